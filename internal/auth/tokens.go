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
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

const (
	// TokenPrefix is the prefix for all generated tokens
	TokenPrefix = "ttgen_"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenUnknown = errors.New("token not found or already revoked")
)

// TokenStore manages API token operations
type TokenStore struct {
	repo *Repository
	now  func() time.Time
}

// NewTokenStore creates a new token store
func NewTokenStore(repo *Repository) *TokenStore {
	return &TokenStore{repo: repo, now: time.Now}
}

// GenerateToken creates a new random token with the ttgen_ prefix
// Format: ttgen_ + Base58(SHA256(random_bytes))
func (s *TokenStore) GenerateToken() (rawToken string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", err
	}

	hash := sha256.Sum256(randomBytes)
	rawToken = TokenPrefix + base58.Encode(hash[:])

	// Only the hash of the raw token is stored
	return rawToken, hashToken(rawToken), nil
}

// hashToken creates a SHA256 hash of a token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// IssueToken validates the request and stores a new token. The raw value
// is only available on the returned struct.
func (s *TokenStore) IssueToken(req TokenIssueRequest) (*TokenWithRaw, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, fmt.Errorf("token label is required")
	}
	if len(req.Scopes) == 0 {
		return nil, fmt.Errorf("at least one scope is required")
	}
	seen := make(map[Scope]bool, len(req.Scopes))
	scopes := make([]Scope, 0, len(req.Scopes))
	for _, sc := range req.Scopes {
		if !IsKnownScope(sc) {
			return nil, fmt.Errorf("unknown scope '%s'", sc)
		}
		if !seen[sc] {
			seen[sc] = true
			scopes = append(scopes, sc)
		}
	}
	if req.RPMLimit != nil && *req.RPMLimit < 0 {
		return nil, fmt.Errorf("rpm limit must be zero or positive")
	}

	ips, err := CanonicalizeIPs(req.AllowedIPs)
	if err != nil {
		return nil, err
	}

	rawToken, tokenHash, err := s.GenerateToken()
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		e := req.ExpiresAt.UTC()
		expiresAt = &e
	}

	t := Token{
		TokenHash:  tokenHash,
		Label:      label,
		RPMLimit:   req.RPMLimit,
		ExpiresAt:  expiresAt,
		CreatedAt:  s.now().UTC(),
		Scopes:     scopes,
		AllowedIPs: ips,
	}
	if err := s.repo.InsertToken(&t); err != nil {
		return nil, err
	}

	return &TokenWithRaw{Token: t, RawToken: rawToken}, nil
}

// ValidateToken validates a raw token and returns the stored token
func (s *TokenStore) ValidateToken(rawToken string) (*Token, error) {
	if !strings.HasPrefix(rawToken, TokenPrefix) {
		return nil, ErrInvalidToken
	}

	t, err := s.repo.GetTokenByHash(hashToken(rawToken))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrInvalidToken
	}
	if t.RevokedAt != nil {
		return nil, ErrTokenRevoked
	}
	if t.ExpiresAt != nil && t.ExpiresAt.Before(s.now()) {
		return nil, ErrTokenExpired
	}
	return t, nil
}

// ListTokens returns all tokens (without raw values)
func (s *TokenStore) ListTokens() ([]Token, error) {
	return s.repo.ListTokens()
}

// RevokeToken revokes a token by ID
func (s *TokenStore) RevokeToken(tokenID int64) error {
	changed, err := s.repo.RevokeToken(tokenID, s.now().UTC())
	if err != nil {
		return err
	}
	if !changed {
		return ErrTokenUnknown
	}
	return nil
}
