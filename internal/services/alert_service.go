// Package services – AlertService
//
// This file implements the alert evaluator: it compares generated forecasts
// against the user's configured thresholds, deduplicates breaches, persists
// the resulting alerts, and dispatches best-effort notifications. It also
// owns threshold CRUD with its range/enum validation.
//
// Notification failures never propagate: delivery is a side effect of
// forecast generation and must not fail it.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/avaldes/go-forecast-backend/internal/domain"
	"github.com/avaldes/go-forecast-backend/internal/notify"
)

// AlertRepo defines the repository contract required by AlertService.
type AlertRepo interface {
	// MatchThresholds returns thresholds scoped to the SKU plus NULL-SKU
	// global fallbacks.
	MatchThresholds(ctx context.Context, db *gorm.DB, userID, sku string) ([]domain.AlertThreshold, error)

	// InsertAlerts persists alerts, skipping dedup-key collisions.
	InsertAlerts(ctx context.Context, db *gorm.DB, alerts []domain.Alert) error

	// GetConfig fetches the user's configuration (for notification toggles).
	GetConfig(ctx context.Context, db *gorm.DB, userID string) (*domain.Configuration, error)

	// CreateThreshold inserts a new threshold row.
	CreateThreshold(ctx context.Context, db *gorm.DB, t *domain.AlertThreshold) error

	// UpdateThreshold updates an existing threshold owned by the user.
	UpdateThreshold(ctx context.Context, db *gorm.DB, userID string, t *domain.AlertThreshold) error

	// ListThresholds returns all thresholds owned by the user.
	ListThresholds(ctx context.Context, db *gorm.DB, userID string) ([]domain.AlertThreshold, error)

	// CountAlerts and ListAlertsPage support paginated alert history.
	CountAlerts(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	ListAlertsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Alert, error)
}

// ForecastSignal is the per-period input to threshold evaluation.
type ForecastSignal struct {
	SKU              string
	DataQualityScore float64
	BaseForecast     float64
	ForecastDate     time.Time
}

// AlertMessage is one produced alert, returned so the orchestrator can
// correlate messages back to individual forecast periods.
type AlertMessage struct {
	Message      string
	ForecastDate time.Time
}

// AlertService evaluates forecasts against thresholds and manages
// threshold configuration.
type AlertService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the alert repository used by this service.
	Repo AlertRepo
	// Notifier delivers alert batches; nil disables dispatch.
	Notifier notify.Notifier
	// Log records notification outcomes; evaluation itself never logs.
	Log zerolog.Logger
}

// Check evaluates every signal against the thresholds matching its SKU
// (exact-SKU rules plus NULL-SKU global fallbacks) and returns the breaches
// found, deduplicated by (threshold, metric, condition, sku, forecastDate).
//
// Produced alerts are persisted (storage errors propagate) and then
// dispatched over each notification channel the user enabled; dispatch and
// settings-lookup failures are logged and swallowed.
func (s *AlertService) Check(ctx context.Context, userID string, signals []ForecastSignal) ([]AlertMessage, error) {
	var (
		messages   []AlertMessage
		rows       []domain.Alert
		seen       = make(map[string]bool)
		thresholds = make(map[string][]domain.AlertThreshold) // per-SKU cache
	)

	for _, sig := range signals {
		matched, ok := thresholds[sig.SKU]
		if !ok {
			var err error
			matched, err = s.Repo.MatchThresholds(ctx, s.DB, userID, sig.SKU)
			if err != nil {
				return nil, err
			}
			thresholds[sig.SKU] = matched
		}

		for _, t := range matched {
			msg, breached := evaluate(t, sig)
			if !breached {
				continue
			}

			key := t.ID + "|" + t.Metric + "|" + t.Condition + "|" + sig.SKU + "|" + sig.ForecastDate.Format("2006-01-02")
			if seen[key] {
				continue
			}
			seen[key] = true

			messages = append(messages, AlertMessage{Message: msg, ForecastDate: sig.ForecastDate})
			rows = append(rows, domain.Alert{
				UserID:       userID,
				ThresholdID:  t.ID,
				Metric:       t.Metric,
				Condition:    t.Condition,
				SKU:          sig.SKU,
				ForecastDate: sig.ForecastDate,
				Message:      msg,
				CreatedAt:    time.Now().UTC(),
			})
		}
	}

	if len(rows) > 0 {
		if err := s.Repo.InsertAlerts(ctx, s.DB, rows); err != nil {
			return nil, err
		}
		s.dispatch(ctx, userID, messages)
	}
	return messages, nil
}

// evaluate applies one threshold to one signal. Precision rules compare the
// data-quality score; sales rules compare the base forecast value. The
// below condition tests against the minimum bound, above against the
// maximum.
func evaluate(t domain.AlertThreshold, sig ForecastSignal) (string, bool) {
	var value float64
	var label string
	switch t.Metric {
	case domain.MetricPrecision:
		value, label = sig.DataQualityScore, "Precision"
	case domain.MetricSales:
		value, label = sig.BaseForecast, "Sales forecast"
	default:
		return "", false
	}

	switch t.Condition {
	case domain.ConditionBelow:
		if value < t.MinThreshold {
			return fmt.Sprintf("%s too low for SKU %s: %s", label, sig.SKU, formatValue(value)), true
		}
	case domain.ConditionAbove:
		if value > t.MaxThreshold {
			return fmt.Sprintf("%s too high for SKU %s: %s", label, sig.SKU, formatValue(value)), true
		}
	}
	return "", false
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// dispatch sends the alert batch over every enabled channel. Best-effort:
// all failures are logged and dropped.
func (s *AlertService) dispatch(ctx context.Context, userID string, messages []AlertMessage) {
	if s.Notifier == nil || len(messages) == 0 {
		return
	}

	cfg, err := s.Repo.GetConfig(ctx, s.DB, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.Log.Warn().Err(err).Str("user_id", userID).Msg("notification settings lookup failed")
		}
		return
	}

	texts := make([]string, len(messages))
	for i, m := range messages {
		texts[i] = m.Message
	}

	settings := cfg.Settings()
	channels := []struct {
		enabled bool
		channel notify.Channel
	}{
		{settings.Email, notify.ChannelEmail},
		{settings.SMS, notify.ChannelSMS},
	}
	for _, c := range channels {
		if !c.enabled {
			continue
		}
		if err := s.Notifier.Dispatch(ctx, c.channel, userID, texts); err != nil {
			s.Log.Warn().Err(err).
				Str("user_id", userID).
				Str("channel", string(c.channel)).
				Msg("alert notification dispatch failed")
		}
	}
}

// ThresholdInput is the external shape for creating or updating a threshold.
type ThresholdInput struct {
	SKU          *string `json:"sku"`
	Category     *string `json:"category"`
	Metric       string  `json:"metric"`
	Condition    string  `json:"condition"`
	MinThreshold float64 `json:"min_threshold"`
	MaxThreshold float64 `json:"max_threshold"`
}

// validateThreshold enforces the enum and range invariants before any
// persistence.
func validateThreshold(in ThresholdInput) error {
	if in.Metric != domain.MetricPrecision && in.Metric != domain.MetricSales {
		return ErrInvalidMetric
	}
	if in.Condition != domain.ConditionBelow && in.Condition != domain.ConditionAbove {
		return ErrInvalidCondition
	}
	if in.MinThreshold >= in.MaxThreshold {
		return ErrThresholdRange
	}
	return nil
}

// CreateThreshold validates and persists a new alert threshold.
func (s *AlertService) CreateThreshold(ctx context.Context, userID string, in ThresholdInput) (*domain.AlertThreshold, error) {
	if err := validateThreshold(in); err != nil {
		return nil, err
	}
	t := &domain.AlertThreshold{
		UserID:       userID,
		SKU:          in.SKU,
		Category:     in.Category,
		Metric:       in.Metric,
		Condition:    in.Condition,
		MinThreshold: in.MinThreshold,
		MaxThreshold: in.MaxThreshold,
	}
	if err := s.Repo.CreateThreshold(ctx, s.DB, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateThreshold validates and updates an existing threshold owned by the
// user.
func (s *AlertService) UpdateThreshold(ctx context.Context, userID, thresholdID string, in ThresholdInput) error {
	if err := validateThreshold(in); err != nil {
		return err
	}
	t := &domain.AlertThreshold{
		ID:           thresholdID,
		SKU:          in.SKU,
		Category:     in.Category,
		Metric:       in.Metric,
		Condition:    in.Condition,
		MinThreshold: in.MinThreshold,
		MaxThreshold: in.MaxThreshold,
	}
	err := s.Repo.UpdateThreshold(ctx, s.DB, userID, t)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrThresholdNotFound
	}
	return err
}

// ListThresholds returns the user's thresholds.
func (s *AlertService) ListThresholds(ctx context.Context, userID string) ([]domain.AlertThreshold, error) {
	return s.Repo.ListThresholds(ctx, s.DB, userID)
}

// ListAlerts returns a page of the user's alert history, most recent first.
func (s *AlertService) ListAlerts(ctx context.Context, userID string, page, pageSize int) ([]domain.Alert, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := s.Repo.CountAlerts(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Alert{}, 0, nil
	}
	items, err := s.Repo.ListAlertsPage(ctx, s.DB, userID, (page-1)*pageSize, pageSize)
	return items, total, err
}
