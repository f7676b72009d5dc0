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
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"TimetableAPI/internal/logger"
)

const (
	// Context keys
	ContextKeyToken = "auth_token"

	// Headers
	HeaderAuthorization      = "Authorization"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"

	// UnlimitedRPM indicates no rate limit
	UnlimitedRPM = 0
)

// Middleware provides token authentication and rate limiting
type Middleware struct {
	tokenStore *TokenStore
	usage      *UsageTracker
	defaultRPM int
	log        *logger.Logger
}

// NewMiddleware creates a new middleware instance. defaultRPM applies to
// tokens issued without their own limit; 0 means unlimited.
func NewMiddleware(tokenStore *TokenStore, usage *UsageTracker, defaultRPM int, log *logger.Logger) *Middleware {
	return &Middleware{
		tokenStore: tokenStore,
		usage:      usage,
		defaultRPM: defaultRPM,
		log:        log,
	}
}

func (m *Middleware) effectiveRPM(t *Token) int {
	if t.RPMLimit != nil {
		return *t.RPMLimit
	}
	return m.defaultRPM
}

// RequireToken returns a middleware that validates bearer tokens and checks quotas
func (m *Middleware) RequireToken(scope Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract Authorization header
		authHeader := c.GetHeader(HeaderAuthorization)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		// 2. Parse Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization header format",
			})
			return
		}

		// 3. Validate token
		token, err := m.tokenStore.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenRevoked) || errors.Is(err, ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": err.Error(),
				})
				return
			}
			m.log.Error("token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to validate token",
			})
			return
		}

		// 4. Check scope
		if !token.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": fmt.Sprintf("token does not have the '%s' scope", scope),
			})
			return
		}

		// 5. Check IP whitelist
		if len(token.AllowedIPs) > 0 {
			canonicalIP, err := CanonicalizeIP(c.ClientIP())
			if err != nil {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "invalid client IP",
				})
				return
			}

			if !IsIPAllowed(canonicalIP, token.AllowedIPs) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "IP address not allowed for this token",
				})
				return
			}
		}

		// 6. Check RPM quota
		if limit := m.effectiveRPM(token); limit != UnlimitedRPM {
			current, err := m.usage.GetTokenRPM(token.ID)
			if err != nil {
				m.log.Error("usage lookup failed", "token_id", token.ID, "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "failed to check usage",
				})
				return
			}

			remaining := limit - current - 1 // -1 for this request
			if remaining < 0 {
				remaining = 0
			}
			resetTime := time.Now().Add(UsageRetentionPeriod).Unix()

			c.Header(HeaderRateLimitLimit, strconv.Itoa(limit))
			c.Header(HeaderRateLimitRemaining, strconv.Itoa(remaining))
			c.Header(HeaderRateLimitReset, strconv.FormatInt(resetTime, 10))

			if current >= limit {
				c.Header(HeaderRetryAfter, "60")
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":      "rate limit exceeded",
					"limit":      limit,
					"retryAfter": 60,
				})
				return
			}
		}

		// 7. Record usage (non-blocking)
		m.usage.RecordRequest(token.ID, scope)

		c.Set(ContextKeyToken, token)
		c.Next()
	}
}

// GetTokenFromContext retrieves the validated token from the context
func GetTokenFromContext(c *gin.Context) *Token {
	tokenVal, exists := c.Get(ContextKeyToken)
	if !exists {
		return nil
	}
	token, ok := tokenVal.(*Token)
	if !ok {
		return nil
	}
	return token
}
