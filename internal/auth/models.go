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

// Scope is what a token is allowed to call.
type Scope string

const (
	ScopeGenerate Scope = "generate"
	ScopeRead     Scope = "read"
)

// KnownScopes lists every scope a token can be issued with.
var KnownScopes = []Scope{ScopeGenerate, ScopeRead}

func IsKnownScope(s Scope) bool {
	for _, k := range KnownScopes {
		if k == s {
			return true
		}
	}
	return false
}

// Token represents an API token
type Token struct {
	ID         int64      `json:"id"`
	TokenHash  string     `json:"-"` // Never expose
	Label      string     `json:"label"`
	RPMLimit   *int       `json:"rpmLimit"` // NULL = server default
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	Scopes     []Scope    `json:"scopes"`
	AllowedIPs []string   `json:"allowedIps,omitempty"`
}

// HasScope reports whether the token was issued with s.
func (t *Token) HasScope(s Scope) bool {
	for _, have := range t.Scopes {
		if have == s {
			return true
		}
	}
	return false
}

// TokenWithRaw includes the raw token value (only returned on creation)
type TokenWithRaw struct {
	Token
	RawToken string `json:"token"`
}

// TokenIssueRequest describes a token to be issued
type TokenIssueRequest struct {
	Label      string
	Scopes     []Scope
	AllowedIPs []string
	RPMLimit   *int
	ExpiresAt  *time.Time
}

// UsageEntry represents a single API request for buffered logging
type UsageEntry struct {
	TokenID   int64
	Scope     Scope
	Timestamp time.Time
}

// NullableInt helper for scanning nullable int
func ScanNullableInt(n sql.NullInt64) *int {
	if n.Valid {
		v := int(n.Int64)
		return &v
	}
	return nil
}

// NullableTime helper for scanning nullable time
func ScanNullableTime(n sql.NullTime) *time.Time {
	if n.Valid {
		t := n.Time.UTC()
		return &t
	}
	return nil
}
