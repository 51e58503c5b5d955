// Auth HTTP handlers.
//
// This file exposes REST endpoints for account management:
//   - POST /auth/register (create account)
//   - POST /auth/login    (exchange credentials for an access token)
//
// Both endpoints are public; every other route requires the bearer token
// issued here.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avaldes/go-forecast-backend/internal/services"
)

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required" example:"ana@acme.com"`
	Password string `json:"password" binding:"required" example:"hunter2hunter2"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"ana@acme.com"`
	Password string `json:"password" binding:"required" example:"hunter2hunter2"`
}

// UserResponse is the public view of an account (no credential material).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the signed access token plus the account it belongs to.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Register creates a new account and returns its public view.
//
// Responses:
//   - 201 with the created user,
//   - 400 on malformed payloads, invalid emails, or weak passwords,
//   - 409 when the email is already registered.
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	u, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidEmail):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid email address")
		return
	case errors.Is(err, services.ErrWeakPassword):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "password must be at least 8 characters")
		return
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not create account")
		return
	}

	ok(c, http.StatusCreated, UserResponse{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt})
}

// Login verifies credentials and returns a signed access token.
//
// Responses:
//   - 200 with token and user,
//   - 400 on malformed payloads,
//   - 401 on unknown email or wrong password (indistinguishable on purpose).
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	token, u, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not log in")
		return
	}

	ok(c, http.StatusOK, LoginResponse{
		Token: token,
		User:  UserResponse{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt},
	})
}
