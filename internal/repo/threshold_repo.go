// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for alert
// thresholds.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaldes/go-forecast-backend/internal/domain"
)

// CreateThreshold inserts a new alert threshold for userID. Range and enum
// validation happens in the service layer before this call.
func CreateThreshold(ctx context.Context, db *gorm.DB, t *domain.AlertThreshold) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(t).Error
}

// UpdateThreshold updates an existing threshold owned by userID. Returns
// ErrNotFound when the row does not exist or belongs to another user.
func UpdateThreshold(ctx context.Context, db *gorm.DB, userID string, t *domain.AlertThreshold) error {
	res := db.WithContext(ctx).
		Model(&domain.AlertThreshold{}).
		Where("id = ? AND user_id = ?", t.ID, userID).
		Updates(map[string]any{
			"sku":           t.SKU,
			"category":      t.Category,
			"metric":        t.Metric,
			"condition":     t.Condition,
			"min_threshold": t.MinThreshold,
			"max_threshold": t.MaxThreshold,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindThreshold locates a threshold by its scope (metric plus optional
// sku/category), used for default-threshold upserts from the configuration
// endpoint. Returns ErrNotFound when no row matches.
func FindThreshold(ctx context.Context, db *gorm.DB, userID, metric string, sku, category *string) (*domain.AlertThreshold, error) {
	q := db.WithContext(ctx).Where("user_id = ? AND metric = ?", userID, metric)
	if sku != nil {
		q = q.Where("sku = ?", *sku)
	} else {
		q = q.Where("sku IS NULL")
	}
	if category != nil {
		q = q.Where("category = ?", *category)
	} else {
		q = q.Where("category IS NULL")
	}
	var t domain.AlertThreshold
	if err := q.First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListThresholds returns every threshold owned by userID.
func ListThresholds(ctx context.Context, db *gorm.DB, userID string) ([]domain.AlertThreshold, error) {
	var out []domain.AlertThreshold
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// MatchThresholds returns thresholds applying to (userID, sku): rows scoped
// to exactly that SKU plus rows with a NULL SKU, which act as global
// fallbacks.
func MatchThresholds(ctx context.Context, db *gorm.DB, userID, sku string) ([]domain.AlertThreshold, error) {
	var out []domain.AlertThreshold
	err := db.WithContext(ctx).
		Where("user_id = ? AND (sku = ? OR sku IS NULL)", userID, sku).
		Find(&out).Error
	return out, err
}
