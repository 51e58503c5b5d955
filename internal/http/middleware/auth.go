// Package middleware – JWT authentication.
//
// This file provides Auth(), the bearer-token gate in front of every
// protected route. It verifies the HMAC-signed access token issued at login
// and stores the authenticated user's identity in the Gin context so that
// handlers and the access logger can attribute the request.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avaldes/go-forecast-backend/internal/auth"
)

const (
	// userIDKey is the Gin context key under which the authenticated user ID is stored.
	userIDKey = "userID"
	// userEmailKey is the Gin context key for the authenticated user's email.
	userEmailKey = "userEmail"
)

// Auth validates the Authorization bearer token and populates the request
// context with the caller's identity.
//
// Behavior:
//   - Requires "Authorization: Bearer <token>" (scheme match is case-insensitive).
//   - On success, sets "userID" and "userEmail" in the Gin context.
//   - On failure, aborts with 401 and the standard JSON error envelope.
//
// Place this after RequestID() and Logger() so rejections carry the
// correlation ID.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		claims, err := auth.ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userEmailKey, claims.Email)
		c.Next()
	}
}

// UserIDFrom returns the authenticated user ID stored by Auth, or "" when
// the request is unauthenticated.
func UserIDFrom(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	return asString(v)
}

func abortUnauthorized(c *gin.Context, msg string) {
	rid, _ := c.Get(requestIDKey)
	c.Header(requestIDHeader, asString(rid))
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": asString(rid),
		"code":       "unauthorized",
		"message":    msg,
	})
}
