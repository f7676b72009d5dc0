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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageTrackerFlush(t *testing.T) {
	repo := newTestRepository(t)
	store := NewTokenStore(repo)
	tok := issue(t, store, TokenIssueRequest{})
	other := issue(t, store, TokenIssueRequest{Label: "other"})
	tracker := newTestTracker(t, repo)

	for i := 0; i < 3; i++ {
		tracker.RecordRequest(tok.ID, ScopeGenerate)
	}
	tracker.RecordRequest(other.ID, ScopeRead)

	n, err := tracker.GetTokenRPM(tok.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is counted before a flush")

	tracker.Flush()

	n, err = tracker.GetTokenRPM(tok.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = tracker.GetTokenRPM(other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	touched, err := repo.GetTokenByID(tok.ID)
	require.NoError(t, err)
	assert.NotNil(t, touched.LastUsedAt)
}

func TestUsageTrackerCleanup(t *testing.T) {
	repo := newTestRepository(t)
	tok := issue(t, NewTokenStore(repo), TokenIssueRequest{})
	tracker := newTestTracker(t, repo)

	tracker.flushBatch([]UsageEntry{
		{TokenID: tok.ID, Scope: ScopeRead, Timestamp: time.Now().UTC().Add(-2 * UsageRetentionPeriod)},
		{TokenID: tok.ID, Scope: ScopeRead, Timestamp: time.Now().UTC()},
	})
	tracker.cleanup()

	var rows int
	require.NoError(t, repo.DB().QueryRow(`SELECT COUNT(*) FROM usage_log`).Scan(&rows))
	assert.Equal(t, 1, rows)

	n, err := tracker.GetTokenRPM(tok.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUsageTrackerRunFlushesOnStop(t *testing.T) {
	repo := newTestRepository(t)
	tok := issue(t, NewTokenStore(repo), TokenIssueRequest{})
	tracker := newTestTracker(t, repo)

	done := make(chan error, 1)
	go func() { done <- tracker.Run(context.Background()) }()

	tracker.RecordRequest(tok.ID, ScopeGenerate)
	tracker.RecordRequest(tok.ID, ScopeGenerate)
	tracker.Stop()
	tracker.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	n, err := tracker.GetTokenRPM(tok.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUsageTrackerRunStopsWithContext(t *testing.T) {
	repo := newTestRepository(t)
	tok := issue(t, NewTokenStore(repo), TokenIssueRequest{})
	tracker := newTestTracker(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tracker.Run(ctx) }()

	tracker.RecordRequest(tok.ID, ScopeRead)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	n, err := tracker.GetTokenRPM(tok.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
