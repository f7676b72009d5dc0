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

package timetable

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecentLimit caps GET /timetables.
const RecentLimit = 20

// Store is the append-only timetable store.
type Store interface {
	Create(ctx context.Context, t *Timetable) error
	ListRecent(ctx context.Context, limit int) ([]Timetable, error)
}

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new timetable repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Create assigns the ID and creation time and inserts the row.
func (r *Repository) Create(ctx context.Context, t *Timetable) error {
	days := t.Days
	if days == nil {
		days = []Day{}
	}
	encoded, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("encode days: %w", err)
	}

	id := uuid.NewString()
	createdAt := r.now().UTC()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO timetables (id, class_name, division, days_per_week, periods_per_day, teacher_context, days, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, t.ClassName, t.Division, t.DaysPerWeek, t.PeriodsPerDay, t.TeacherContext, string(encoded), createdAt.UnixNano(),
	)
	if err != nil {
		return err
	}

	t.ID = id
	t.Days = days
	t.CreatedAt = createdAt
	return nil
}

// ListRecent returns up to limit timetables, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Timetable, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, class_name, division, days_per_week, periods_per_day, teacher_context, days, created_at
		FROM timetables
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Avoid nil slices in JSON response
	result := []Timetable{}
	for rows.Next() {
		var t Timetable
		var days string
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.ClassName, &t.Division, &t.DaysPerWeek, &t.PeriodsPerDay, &t.TeacherContext, &days, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(days), &t.Days); err != nil {
			return nil, fmt.Errorf("decode days of %s: %w", t.ID, err)
		}
		t.CreatedAt = time.Unix(0, createdAt).UTC()
		result = append(result, t)
	}
	return result, rows.Err()
}
