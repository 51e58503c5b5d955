// Package services – AuthService
//
// This file implements account registration and login. Passwords are
// bcrypt-hashed; successful logins are answered with a signed JWT the HTTP
// middleware later verifies. Unknown emails and wrong passwords produce the
// same error on purpose.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/avaldes/go-forecast-backend/internal/auth"
	"github.com/avaldes/go-forecast-backend/internal/domain"
)

// UserRepo defines the repository contract required by AuthService.
type UserRepo interface {
	CreateUser(ctx context.Context, db *gorm.DB, email, passwordHash string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error)
}

// AuthService handles registration and login.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the user repository used by this service.
	Repo UserRepo
	// JWTSecret signs access tokens.
	JWTSecret []byte
	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration
}

const minPasswordLen = 8

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	if _, err := s.Repo.FindUserByEmail(ctx, s.DB, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.Repo.CreateUser(ctx, s.DB, email, string(hash))
}

// Login verifies credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.Repo.FindUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.JWTSecret, u.ID, u.Email, u.Role, s.TokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
