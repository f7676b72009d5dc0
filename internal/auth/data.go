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
	"database/sql"
	"time"
)

// Repository provides access to auth-related database operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new auth repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

const tokenColumns = `id, token_hash, label, rpm_limit, expires_at, revoked_at, last_used_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*Token, error) {
	var t Token
	var rpm sql.NullInt64
	var expiresAt, revokedAt, lastUsedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.TokenHash, &t.Label, &rpm, &expiresAt, &revokedAt, &lastUsedAt, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.RPMLimit = ScanNullableInt(rpm)
	t.ExpiresAt = ScanNullableTime(expiresAt)
	t.RevokedAt = ScanNullableTime(revokedAt)
	t.LastUsedAt = ScanNullableTime(lastUsedAt)
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

// --- Token Operations ---

// InsertToken stores a token with its scopes and allowed IPs in one transaction
func (r *Repository) InsertToken(t *Token) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	// Defer a rollback in case anything fails.
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.Exec(`
		INSERT INTO api_tokens (token_hash, label, rpm_limit, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.TokenHash, t.Label, t.RPMLimit, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	for _, s := range t.Scopes {
		if _, err := tx.Exec(`INSERT INTO token_scopes (token_id, scope) VALUES (?, ?)`, t.ID, string(s)); err != nil {
			return err
		}
	}
	for _, ip := range t.AllowedIPs {
		if _, err := tx.Exec(`INSERT INTO token_allowed_ips (token_id, ip) VALUES (?, ?)`, t.ID, ip); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetTokenByHash returns a token by its hash, or nil when unknown
func (r *Repository) GetTokenByHash(hash string) (*Token, error) {
	t, err := scanToken(r.db.QueryRow(`SELECT `+tokenColumns+` FROM api_tokens WHERE token_hash = ?`, hash))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, r.loadDetails(t)
}

// GetTokenByID returns a token by ID, or nil when unknown
func (r *Repository) GetTokenByID(id int64) (*Token, error) {
	t, err := scanToken(r.db.QueryRow(`SELECT `+tokenColumns+` FROM api_tokens WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, r.loadDetails(t)
}

// ListTokens returns every token, newest first
func (r *Repository) ListTokens() ([]Token, error) {
	rows, err := r.db.Query(`SELECT ` + tokenColumns + ` FROM api_tokens ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tokens {
		if err := r.loadDetails(&tokens[i]); err != nil {
			return nil, err
		}
	}
	return tokens, nil
}

func (r *Repository) loadDetails(t *Token) error {
	scopes, err := r.queryStrings(`SELECT scope FROM token_scopes WHERE token_id = ? ORDER BY scope`, t.ID)
	if err != nil {
		return err
	}
	t.Scopes = make([]Scope, len(scopes))
	for i, s := range scopes {
		t.Scopes[i] = Scope(s)
	}

	t.AllowedIPs, err = r.queryStrings(`SELECT ip FROM token_allowed_ips WHERE token_id = ? ORDER BY ip`, t.ID)
	return err
}

func (r *Repository) queryStrings(query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RevokeToken marks a token revoked; it reports false if nothing changed
func (r *Repository) RevokeToken(id int64, at time.Time) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE api_tokens SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL
	`, at, id)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// TouchToken records when a token was last accepted
func (r *Repository) TouchToken(id int64, at time.Time) error {
	_, err := r.db.Exec(`UPDATE api_tokens SET last_used_at = ? WHERE id = ?`, at, id)
	return err
}
