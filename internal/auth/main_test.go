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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"TimetableAPI/internal/databases"
	"TimetableAPI/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := databases.OpenAndMigrate(context.Background(), filepath.Join(t.TempDir(), "auth.db"), databases.Auth)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func issue(t *testing.T, store *TokenStore, req TokenIssueRequest) *TokenWithRaw {
	t.Helper()
	if req.Label == "" {
		req.Label = "test"
	}
	if req.Scopes == nil {
		req.Scopes = []Scope{ScopeGenerate, ScopeRead}
	}
	tok, err := store.IssueToken(req)
	require.NoError(t, err)
	return tok
}

func newTestTracker(t *testing.T, repo *Repository) *UsageTracker {
	t.Helper()
	return NewUsageTracker(repo, logger.Nop())
}

func intPtr(n int) *int { return &n }
