// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for per-user
// forecast configuration.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avaldes/go-forecast-backend/internal/domain"
)

// GetConfig fetches the configuration for userID, or ErrNotFound when the
// user has never saved one.
func GetConfig(ctx context.Context, db *gorm.DB, userID string) (*domain.Configuration, error) {
	var c domain.Configuration
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertConfig creates or replaces the single configuration row for
// c.UserID (one config per user, enforced by the unique index on user_id).
func UpsertConfig(ctx context.Context, db *gorm.DB, c *domain.Configuration) error {
	now := time.Now().UTC()

	var existing domain.Configuration
	err := db.WithContext(ctx).Where("user_id = ?", c.UserID).First(&existing).Error
	switch {
	case err == nil:
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = now
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.ID = uuid.NewString()
		c.CreatedAt = now
		c.UpdatedAt = now
	default:
		return err
	}

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"forecast_horizons", "confidence_levels",
				"notification_email", "notification_sms", "updated_at",
			}),
		}).
		Create(c).Error
}
