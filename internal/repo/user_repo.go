// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for user accounts.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaldes/go-forecast-backend/internal/domain"
)

// CreateUser inserts a new user account. A duplicate email surfaces as a
// unique-constraint error from the driver.
func CreateUser(ctx context.Context, db *gorm.DB, email, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         "user",
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// FindUserByEmail fetches a user by email, or ErrNotFound.
func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
