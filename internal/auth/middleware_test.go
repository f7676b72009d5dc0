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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TimetableAPI/internal/logger"
)

type middlewareFixture struct {
	store   *TokenStore
	tracker *UsageTracker
	router  *gin.Engine
}

func newMiddlewareFixture(t *testing.T, defaultRPM int) *middlewareFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newTestRepository(t)
	store := NewTokenStore(repo)
	tracker := newTestTracker(t, repo)
	m := NewMiddleware(store, tracker, defaultRPM, logger.Nop())

	r := gin.New()
	handler := func(c *gin.Context) {
		tok := GetTokenFromContext(c)
		c.JSON(http.StatusOK, gin.H{"label": tok.Label})
	}
	r.POST("/generate", m.RequireToken(ScopeGenerate), handler)
	r.GET("/read", m.RequireToken(ScopeRead), handler)

	return &middlewareFixture{store: store, tracker: tracker, router: r}
}

func (f *middlewareFixture) do(method, path, authorization, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set(HeaderAuthorization, authorization)
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRequireTokenAuthentication(t *testing.T) {
	f := newMiddlewareFixture(t, UnlimitedRPM)
	tok := issue(t, f.store, TokenIssueRequest{Label: "frontend"})

	rec := f.do(http.MethodGet, "/read", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing authorization header"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/read", "Basic "+tok.RawToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/read", "Bearer "+TokenPrefix+"forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/read", "bearer "+tok.RawToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"label":"frontend"}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get(HeaderRateLimitLimit), "no limit headers when unlimited")
}

func TestRequireTokenRevokedAndExpired(t *testing.T) {
	f := newMiddlewareFixture(t, UnlimitedRPM)

	revoked := issue(t, f.store, TokenIssueRequest{})
	require.NoError(t, f.store.RevokeToken(revoked.ID))
	rec := f.do(http.MethodGet, "/read", "Bearer "+revoked.RawToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token has been revoked"}`, rec.Body.String())

	past := time.Now().Add(-time.Minute)
	expired := issue(t, f.store, TokenIssueRequest{ExpiresAt: &past})
	rec = f.do(http.MethodGet, "/read", "Bearer "+expired.RawToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token has expired"}`, rec.Body.String())
}

func TestRequireTokenScope(t *testing.T) {
	f := newMiddlewareFixture(t, UnlimitedRPM)
	reader := issue(t, f.store, TokenIssueRequest{Scopes: []Scope{ScopeRead}})

	rec := f.do(http.MethodPost, "/generate", "Bearer "+reader.RawToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"token does not have the 'generate' scope"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/read", "Bearer "+reader.RawToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTokenAllowedIPs(t *testing.T) {
	f := newMiddlewareFixture(t, UnlimitedRPM)
	tok := issue(t, f.store, TokenIssueRequest{AllowedIPs: []string{"192.0.2.10"}})

	rec := f.do(http.MethodGet, "/read", "Bearer "+tok.RawToken, "198.51.100.7:51000")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"IP address not allowed for this token"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/read", "Bearer "+tok.RawToken, "192.0.2.10:51000")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTokenRateLimit(t *testing.T) {
	f := newMiddlewareFixture(t, UnlimitedRPM)
	tok := issue(t, f.store, TokenIssueRequest{RPMLimit: intPtr(2)})
	auth := "Bearer " + tok.RawToken

	rec := f.do(http.MethodPost, "/generate", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get(HeaderRateLimitLimit))
	assert.Equal(t, "1", rec.Header().Get(HeaderRateLimitRemaining))
	assert.NotEmpty(t, rec.Header().Get(HeaderRateLimitReset))
	f.tracker.Flush()

	rec = f.do(http.MethodPost, "/generate", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(HeaderRateLimitRemaining))
	f.tracker.Flush()

	rec = f.do(http.MethodPost, "/generate", auth, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get(HeaderRetryAfter))
	assert.JSONEq(t, `{"error":"rate limit exceeded","limit":2,"retryAfter":60}`, rec.Body.String())
}

func TestRequireTokenDefaultRPM(t *testing.T) {
	f := newMiddlewareFixture(t, 1)
	limited := issue(t, f.store, TokenIssueRequest{})
	unlimited := issue(t, f.store, TokenIssueRequest{Label: "ops", RPMLimit: intPtr(UnlimitedRPM)})

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/read", "Bearer "+limited.RawToken, "").Code)
	f.tracker.Flush()
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodGet, "/read", "Bearer "+limited.RawToken, "").Code)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/read", "Bearer "+unlimited.RawToken, "").Code)
		f.tracker.Flush()
	}
}
