/*
This project is the automatic timetable backend for the OpenSourceDUTH team. It builds weekly class timetables from teacher availability with the help of a generative model.
Timetable API Copyright (C) 2025 OpenSourceDUTH
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package auth

import (
	"context"
	"sync"
	"time"

	"TimetableAPI/internal/logger"
)

const (
	// UsageBufferSize is the size of the usage log buffer
	UsageBufferSize = 1000

	// UsageFlushInterval is how often to flush buffered usage logs
	UsageFlushInterval = 2 * time.Second

	// UsageCleanupInterval is how often to clean up old usage logs
	UsageCleanupInterval = 30 * time.Second

	// UsageRetentionPeriod is how long to keep usage logs (60 seconds for RPM)
	UsageRetentionPeriod = 60 * time.Second
)

// UsageTracker tracks API usage for rate limiting with buffered writes
type UsageTracker struct {
	repo     *Repository
	log      *logger.Logger
	buffer   chan UsageEntry
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewUsageTracker creates a new usage tracker
func NewUsageTracker(repo *Repository, log *logger.Logger) *UsageTracker {
	return &UsageTracker{
		repo:   repo,
		log:    log,
		buffer: make(chan UsageEntry, UsageBufferSize),
		stopCh: make(chan struct{}),
	}
}

// RecordRequest records an API request (non-blocking)
func (t *UsageTracker) RecordRequest(tokenID int64, scope Scope) {
	entry := UsageEntry{
		TokenID:   tokenID,
		Scope:     scope,
		Timestamp: time.Now().UTC(),
	}

	// Dropping an entry only makes the limiter more lenient
	select {
	case t.buffer <- entry:
	default:
		t.log.Warn("usage buffer full, dropping entry", "token_id", tokenID)
	}
}

// GetTokenRPM returns the requests recorded for a token in the last minute
func (t *UsageTracker) GetTokenRPM(tokenID int64) (int, error) {
	cutoff := time.Now().UTC().Add(-UsageRetentionPeriod)
	var count int
	err := t.repo.db.QueryRow(`
		SELECT COUNT(*) FROM usage_log
		WHERE token_id = ? AND timestamp > ?
	`, tokenID, cutoff).Scan(&count)
	return count, err
}

// Run starts the writer and cleanup loops and blocks until ctx is done or
// Stop is called. Buffered entries are flushed before it returns.
func (t *UsageTracker) Run(ctx context.Context) error {
	t.wg.Add(2)

	go func() {
		defer t.wg.Done()
		t.usageWriter(ctx)
	}()

	go func() {
		defer t.wg.Done()
		t.cleanupTicker(ctx)
	}()

	t.wg.Wait()
	return nil
}

// Stop gracefully stops the usage tracker
func (t *UsageTracker) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}

// Flush writes everything currently buffered.
func (t *UsageTracker) Flush() {
	t.drainAndFlush()
}

func (t *UsageTracker) usageWriter(ctx context.Context) {
	ticker := time.NewTicker(UsageFlushInterval)
	defer ticker.Stop()

	var batch []UsageEntry

	for {
		select {
		case <-ctx.Done():
			t.flushBatch(batch)
			t.drainAndFlush()
			return
		case <-t.stopCh:
			t.flushBatch(batch)
			t.drainAndFlush()
			return
		case entry := <-t.buffer:
			batch = append(batch, entry)
			if len(batch) >= 100 {
				t.flushBatch(batch)
				batch = nil
			}
		case <-ticker.C:
			if len(batch) > 0 {
				t.flushBatch(batch)
				batch = nil
			}
		}
	}
}

func (t *UsageTracker) drainAndFlush() {
	var batch []UsageEntry
	for {
		select {
		case entry := <-t.buffer:
			batch = append(batch, entry)
		default:
			if len(batch) > 0 {
				t.flushBatch(batch)
			}
			return
		}
	}
}

func (t *UsageTracker) flushBatch(batch []UsageEntry) {
	if len(batch) == 0 {
		return
	}

	tx, err := t.repo.db.Begin()
	if err != nil {
		t.log.Error("usage flush: begin", "error", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO usage_log (token_id, scope, timestamp) VALUES (?, ?, ?)
	`)
	if err != nil {
		t.log.Error("usage flush: prepare", "error", err)
		return
	}
	defer stmt.Close()

	lastUsed := make(map[int64]time.Time)
	for _, entry := range batch {
		if _, err := stmt.Exec(entry.TokenID, string(entry.Scope), entry.Timestamp); err != nil {
			t.log.Error("usage flush: insert", "error", err)
			return
		}
		if entry.Timestamp.After(lastUsed[entry.TokenID]) {
			lastUsed[entry.TokenID] = entry.Timestamp
		}
	}

	if err := tx.Commit(); err != nil {
		t.log.Error("usage flush: commit", "error", err)
		return
	}

	for id, at := range lastUsed {
		if err := t.repo.TouchToken(id, at); err != nil {
			t.log.Warn("usage flush: touch token", "token_id", id, "error", err)
		}
	}
}

func (t *UsageTracker) cleanupTicker(ctx context.Context) {
	ticker := time.NewTicker(UsageCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.cleanup()
		}
	}
}

func (t *UsageTracker) cleanup() {
	cutoff := time.Now().UTC().Add(-UsageRetentionPeriod)
	if _, err := t.repo.db.Exec("DELETE FROM usage_log WHERE timestamp <= ?", cutoff); err != nil {
		t.log.Warn("usage cleanup failed", "error", err)
	}
}
