// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for generated
// forecasts.
package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avaldes/go-forecast-backend/internal/domain"
)

// ExistingForecastDates returns the subset of dates for which a forecast
// already exists for (userID, sku), as a set keyed by the date's UTC
// representation. The orchestrator uses it to skip periods that were
// generated by an earlier run.
func ExistingForecastDates(ctx context.Context, db *gorm.DB, userID, sku string, dates []time.Time) (map[time.Time]bool, error) {
	out := make(map[time.Time]bool, len(dates))
	if len(dates) == 0 {
		return out, nil
	}
	var existing []time.Time
	err := db.WithContext(ctx).
		Model(&domain.Forecast{}).
		Where("user_id = ? AND sku = ? AND forecast_date IN ?", userID, sku, dates).
		Pluck("forecast_date", &existing).Error
	if err != nil {
		return nil, err
	}
	for _, d := range existing {
		out[d.UTC()] = true
	}
	return out, nil
}

// InsertForecasts bulk-inserts forecast rows. Collisions on
// (user_id, sku, forecast_date) are silently skipped: under concurrent
// generation runs for the same key the unique index, not a lock, guarantees
// at most one logical record per period.
func InsertForecasts(ctx context.Context, db *gorm.DB, records []domain.Forecast) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&records).Error
}

// ForecastFilter narrows ListForecastsPage results.
type ForecastFilter struct {
	SKU       string
	StartDate *time.Time
	EndDate   *time.Time
}

// CountForecasts returns the number of stored forecasts for userID matching
// the filter.
func CountForecasts(ctx context.Context, db *gorm.DB, userID string, f ForecastFilter) (int64, error) {
	var n int64
	err := forecastQuery(db.WithContext(ctx), userID, f).
		Model(&domain.Forecast{}).
		Count(&n).Error
	return n, err
}

// ListForecastsPage returns a page of stored forecasts for userID matching
// the filter, ordered by forecast date ascending.
func ListForecastsPage(ctx context.Context, db *gorm.DB, userID string, f ForecastFilter, offset, limit int) ([]domain.Forecast, error) {
	var out []domain.Forecast
	err := forecastQuery(db.WithContext(ctx), userID, f).
		Order("forecast_date asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ForecastAggregates summarizes stored forecasts for metrics endpoints.
type ForecastAggregates struct {
	Count         int64
	AvgBaseValue  float64
	AvgQuality    float64
	LastGenerated time.Time
}

// AggregateForecasts computes count, average base value, average quality
// score, and the most recent generation time for (userID, sku). An empty
// sku aggregates across all SKUs.
func AggregateForecasts(ctx context.Context, db *gorm.DB, userID, sku string) (ForecastAggregates, error) {
	var agg ForecastAggregates
	q := db.WithContext(ctx).Model(&domain.Forecast{}).Where("user_id = ?", userID)
	if sku != "" {
		q = q.Where("sku = ?", sku)
	}

	row := q.Select(
		"COUNT(*) AS count",
		"COALESCE(AVG(base_value), 0) AS avg_base",
		"COALESCE(AVG(data_quality), 0) AS avg_quality",
		"MAX(generated_at) AS last_generated",
	).Row()
	var last sql.NullTime
	if err := row.Scan(&agg.Count, &agg.AvgBaseValue, &agg.AvgQuality, &last); err != nil {
		return ForecastAggregates{}, err
	}
	if last.Valid {
		agg.LastGenerated = last.Time
	}
	return agg, nil
}

func forecastQuery(q *gorm.DB, userID string, f ForecastFilter) *gorm.DB {
	q = q.Where("user_id = ?", userID)
	if f.SKU != "" {
		q = q.Where("sku = ?", f.SKU)
	}
	if f.StartDate != nil {
		q = q.Where("forecast_date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("forecast_date <= ?", *f.EndDate)
	}
	return q
}
