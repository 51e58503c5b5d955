// Package services – ConfigService
//
// This file implements per-user forecast configuration: a single upserted
// row holding the multi-valued horizon and confidence sets plus
// notification toggles, optionally accompanied by a default alert
// threshold.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avaldes/go-forecast-backend/internal/domain"
	"github.com/avaldes/go-forecast-backend/internal/forecast"
)

// ConfigRepo defines the repository contract required by ConfigService.
type ConfigRepo interface {
	// GetConfig fetches the user's configuration.
	GetConfig(ctx context.Context, db *gorm.DB, userID string) (*domain.Configuration, error)

	// UpsertConfig creates or replaces the single configuration row.
	UpsertConfig(ctx context.Context, db *gorm.DB, c *domain.Configuration) error

	// FindThreshold locates a threshold by scope for default-threshold
	// upserts.
	FindThreshold(ctx context.Context, db *gorm.DB, userID, metric string, sku, category *string) (*domain.AlertThreshold, error)

	// CreateThreshold / UpdateThreshold persist the default threshold.
	CreateThreshold(ctx context.Context, db *gorm.DB, t *domain.AlertThreshold) error
	UpdateThreshold(ctx context.Context, db *gorm.DB, userID string, t *domain.AlertThreshold) error
}

// ConfigInput is the external shape for saving configuration.
type ConfigInput struct {
	ForecastHorizons []int                       `json:"forecast_horizons"`
	ConfidenceLevels []float64                   `json:"confidence_levels"`
	DefaultThreshold *ThresholdInput             `json:"default_threshold,omitempty"`
	Notifications    domain.NotificationSettings `json:"notifications"`
}

// ConfigService manages forecast configuration.
type ConfigService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the configuration repository used by this service.
	Repo ConfigRepo
}

// Upsert validates and saves the user's configuration (exactly one row per
// user). When a default threshold is supplied it is validated and upserted
// by scope alongside the configuration.
func (s *ConfigService) Upsert(ctx context.Context, userID string, in ConfigInput) (*domain.Configuration, error) {
	if len(in.ForecastHorizons) == 0 {
		return nil, ErrInvalidHorizonSet
	}
	for _, h := range in.ForecastHorizons {
		if h < forecast.MinHorizon || h > forecast.MaxHorizon {
			return nil, ErrInvalidHorizonSet
		}
	}
	if len(in.ConfidenceLevels) == 0 {
		return nil, ErrInvalidConfidenceSet
	}
	for _, c := range in.ConfidenceLevels {
		if !forecast.ValidConfidenceLevel(c) {
			return nil, ErrInvalidConfidenceSet
		}
	}
	if in.DefaultThreshold != nil {
		if err := validateThreshold(*in.DefaultThreshold); err != nil {
			return nil, err
		}
	}

	cfg := &domain.Configuration{
		UserID:            userID,
		ForecastHorizons:  domain.IntSet(in.ForecastHorizons),
		ConfidenceLevels:  domain.FloatSet(in.ConfidenceLevels),
		NotificationEmail: in.Notifications.Email,
		NotificationSMS:   in.Notifications.SMS,
	}
	if err := s.Repo.UpsertConfig(ctx, s.DB, cfg); err != nil {
		return nil, err
	}

	if in.DefaultThreshold != nil {
		if err := s.upsertDefaultThreshold(ctx, userID, *in.DefaultThreshold); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (s *ConfigService) upsertDefaultThreshold(ctx context.Context, userID string, in ThresholdInput) error {
	t := &domain.AlertThreshold{
		UserID:       userID,
		SKU:          in.SKU,
		Category:     in.Category,
		Metric:       in.Metric,
		Condition:    in.Condition,
		MinThreshold: in.MinThreshold,
		MaxThreshold: in.MaxThreshold,
	}

	existing, err := s.Repo.FindThreshold(ctx, s.DB, userID, in.Metric, in.SKU, in.Category)
	switch {
	case err == nil:
		t.ID = existing.ID
		return s.Repo.UpdateThreshold(ctx, s.DB, userID, t)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.Repo.CreateThreshold(ctx, s.DB, t)
	default:
		return err
	}
}

// Get returns the user's configuration, or ErrNoConfig when none exists.
func (s *ConfigService) Get(ctx context.Context, userID string) (*domain.Configuration, error) {
	cfg, err := s.Repo.GetConfig(ctx, s.DB, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoConfig
	}
	return cfg, err
}
