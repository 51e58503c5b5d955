// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for sales records.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avaldes/go-forecast-backend/internal/domain"
)

// InsertSalesBatch bulk-inserts validated sales rows for one upload.
// Rows colliding on (user_id, sku, date) are silently skipped, making
// re-uploads of overlapping files idempotent. Returns the number of rows
// actually written.
func InsertSalesBatch(ctx context.Context, db *gorm.DB, records []domain.SalesRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&records)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ListSalesHistory returns all sales for (userID, sku) ordered by date
// ascending, the shape the simulator expects.
func ListSalesHistory(ctx context.Context, db *gorm.DB, userID, sku string) ([]domain.SalesRecord, error) {
	var out []domain.SalesRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND sku = ?", userID, sku).
		Order("date asc").
		Find(&out).Error
	return out, err
}

// SalesInRange returns all sales for userID with date in [start, end],
// across every SKU. Used by dashboard aggregation.
func SalesInRange(ctx context.Context, db *gorm.DB, userID string, start, end time.Time) ([]domain.SalesRecord, error) {
	var out []domain.SalesRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date asc").
		Find(&out).Error
	return out, err
}

// CountDistinctSKUs returns the number of distinct SKUs sold by userID in
// [start, end].
func CountDistinctSKUs(ctx context.Context, db *gorm.DB, userID string, start, end time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.SalesRecord{}).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Distinct("sku").
		Count(&n).Error
	return n, err
}

// CountDistinctCategories returns the number of distinct categories sold by
// userID in [start, end].
func CountDistinctCategories(ctx context.Context, db *gorm.DB, userID string, start, end time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.SalesRecord{}).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Distinct("category").
		Count(&n).Error
	return n, err
}
