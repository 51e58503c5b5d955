// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for alerts.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avaldes/go-forecast-backend/internal/domain"
)

// InsertAlerts bulk-inserts alerts, skipping rows that collide on the
// deduplication key (threshold_id, metric, condition, sku, forecast_date).
// Re-running an evaluation over the same forecasts therefore never
// duplicates an alert.
func InsertAlerts(ctx context.Context, db *gorm.DB, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	for i := range alerts {
		if alerts[i].ID == "" {
			alerts[i].ID = uuid.NewString()
		}
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&alerts).Error
}

// CountAlerts returns the total number of alerts for userID.
func CountAlerts(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

// ListAlertsPage returns a page of alerts for userID, most recent first.
func ListAlertsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Alert, error) {
	var out []domain.Alert
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
