// Package services – ForecastService
//
// This file implements the forecast orchestrator: for one (user, sku) pair
// it loads configuration and history, falls back to a synthetic series when
// too little real data exists, runs the simulator, persists new periods
// idempotently, scores data quality, and triggers alert evaluation.
//
// Steps run strictly sequentially within one call. Across concurrent calls
// for the same key, the storage layer's unique index (not an in-process
// lock) guarantees at most one record per forecast period.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/avaldes/go-forecast-backend/internal/domain"
	"github.com/avaldes/go-forecast-backend/internal/forecast"
)

// ForecastRepo defines the repository contract required by ForecastService.
type ForecastRepo interface {
	// GetConfig fetches the user's forecast configuration.
	GetConfig(ctx context.Context, db *gorm.DB, userID string) (*domain.Configuration, error)

	// ListSalesHistory returns sales for (userID, sku) ordered by date ascending.
	ListSalesHistory(ctx context.Context, db *gorm.DB, userID, sku string) ([]domain.SalesRecord, error)

	// ExistingForecastDates reports which of the given dates already have a
	// stored forecast for (userID, sku).
	ExistingForecastDates(ctx context.Context, db *gorm.DB, userID, sku string, dates []time.Time) (map[time.Time]bool, error)

	// InsertForecasts persists new forecast rows, skipping collisions.
	InsertForecasts(ctx context.Context, db *gorm.DB, records []domain.Forecast) error

	// CountForecasts / ListForecastsPage / AggregateForecasts back the
	// history and metrics queries.
	CountForecasts(ctx context.Context, db *gorm.DB, userID string, f ForecastHistoryFilter) (int64, error)
	ListForecastsPage(ctx context.Context, db *gorm.DB, userID string, f ForecastHistoryFilter, offset, limit int) ([]domain.Forecast, error)
	AggregateForecasts(ctx context.Context, db *gorm.DB, userID, sku string) (ForecastMetrics, error)
}

// AlertChecker is the slice of AlertService the orchestrator depends on.
type AlertChecker interface {
	Check(ctx context.Context, userID string, signals []ForecastSignal) ([]AlertMessage, error)
}

// ForecastHistoryFilter narrows forecast history queries.
type ForecastHistoryFilter struct {
	SKU       string
	StartDate *time.Time
	EndDate   *time.Time
}

// ForecastMetrics summarizes stored forecasts.
type ForecastMetrics struct {
	Count         int64     `json:"count"`
	AvgBaseValue  float64   `json:"avg_base_value"`
	AvgQuality    float64   `json:"avg_quality_score"`
	LastGenerated time.Time `json:"last_generated_at"`
}

// GeneratedForecast is the per-period result of a generation run.
type GeneratedForecast struct {
	SKU              string    `json:"sku"`
	ForecastPeriod   string    `json:"forecast_period"`
	BaseForecast     float64   `json:"base_forecast"`
	UpperBound       float64   `json:"upper_bound"`
	LowerBound       float64   `json:"lower_bound"`
	ConfidenceLevel  float64   `json:"confidence_level"`
	SeasonalFactor   float64   `json:"seasonal_factor"`
	TrendComponent   float64   `json:"trend_component"`
	GeneratedAt      time.Time `json:"generated_at"`
	ModelVersion     string    `json:"model_version"`
	DataQualityScore float64   `json:"data_quality_score"`
	DataSource       string    `json:"data_source"`
	Alerts           []string  `json:"alerts,omitempty"`
}

// defaultQualityScore is used for historical series with no overlap between
// simulated periods and recorded sales.
const defaultQualityScore = 0.87

// ForecastService orchestrates end-to-end forecast generation and serves
// forecast history and metrics.
type ForecastService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the forecast repository used by this service.
	Repo ForecastRepo
	// Alerts evaluates generated forecasts against user thresholds.
	Alerts AlertChecker
	// Sim produces forecast periods; its noise source is injected at wiring
	// time so tests can run deterministically.
	Sim *forecast.Simulator
	// Clock supplies generation timestamps; nil means time.Now.
	Clock func() time.Time
}

func (s *ForecastService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// Generate runs the full forecast pipeline for (userID, sku).
//
// period optionally fixes the base date ("YYYY-MM-DD"); empty means the
// latest history date. Periods already generated by an earlier run are
// skipped, making regeneration idempotent: the response still covers every
// simulated period, but only new ones are written.
func (s *ForecastService) Generate(ctx context.Context, userID, sku, period string) ([]GeneratedForecast, error) {
	// 1. Configuration is a hard precondition.
	cfg, err := s.Repo.GetConfig(ctx, s.DB, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load config: %v", ErrDatabase, err)
	}

	// 2-3. History, with synthetic fallback below two points. The fallback
	// is a designed degradation, not a failure path.
	records, err := s.Repo.ListSalesHistory(ctx, s.DB, userID, sku)
	if err != nil {
		return nil, fmt.Errorf("%w: load history: %v", ErrDatabase, err)
	}

	var source forecast.HistorySource
	if len(records) < 2 {
		source = forecast.SyntheticSource(forecast.Synthetic(sku, forecast.SyntheticMonths, s.now()))
	} else {
		points := make([]forecast.Point, len(records))
		for i, r := range records {
			points[i] = forecast.Point{Date: r.Date, Quantity: float64(r.Quantity)}
		}
		source = forecast.Historical(points)
	}

	// 4. Reduce the configured sets to scalars for this run.
	horizon := ReduceHorizon(cfg.ForecastHorizons)
	confidence := ReduceConfidence(cfg.ConfidenceLevels)

	// 5. Base date: explicit period wins over the latest history date.
	var baseDate time.Time
	if period != "" {
		baseDate, err = time.Parse("2006-01-02", period)
		if err != nil {
			return nil, ErrInvalidForecastPeriod
		}
	}

	// 6. Simulate.
	periods, err := s.Sim.Simulate(source.Points, horizon, confidence, baseDate)
	if err != nil {
		return nil, err
	}

	// 7. Skip periods an earlier run already generated.
	dates := make([]time.Time, len(periods))
	for i, p := range periods {
		dates[i] = p.Date
	}
	existing, err := s.Repo.ExistingForecastDates(ctx, s.DB, userID, sku, dates)
	if err != nil {
		return nil, fmt.Errorf("%w: check existing forecasts: %v", ErrDatabase, err)
	}

	// 9 (computed early so stored rows carry it). Data-quality score.
	score := qualityScore(source, records, periods)

	generatedAt := s.now()
	modelVersion := "v1.0-" + versionSuffix(source.Kind)

	// 8. Persist only the new periods.
	var rows []domain.Forecast
	for _, p := range periods {
		if existing[p.Date.UTC()] {
			continue
		}
		rows = append(rows, domain.Forecast{
			UserID:          userID,
			SKU:             sku,
			ForecastDate:    p.Date,
			BaseValue:       p.BaseValue,
			UpperBound:      p.UpperBound,
			LowerBound:      p.LowerBound,
			ConfidenceLevel: confidence,
			SeasonalFactor:  p.SeasonalFactor,
			TrendComponent:  p.TrendComponent,
			DataQuality:     score,
			ModelVersion:    modelVersion,
			GeneratedAt:     generatedAt,
		})
	}
	if err := s.Repo.InsertForecasts(ctx, s.DB, rows); err != nil {
		return nil, fmt.Errorf("%w: insert forecasts: %v", ErrDatabase, err)
	}

	// 10. Alert evaluation over every simulated period.
	signals := make([]ForecastSignal, len(periods))
	for i, p := range periods {
		signals[i] = ForecastSignal{
			SKU:              sku,
			DataQualityScore: score,
			BaseForecast:     p.BaseValue,
			ForecastDate:     p.Date,
		}
	}
	alerts, err := s.Alerts.Check(ctx, userID, signals)
	if err != nil {
		return nil, fmt.Errorf("%w: persist alerts: %v", ErrDatabase, err)
	}

	alertsByDate := make(map[time.Time][]string, len(alerts))
	for _, a := range alerts {
		alertsByDate[a.ForecastDate] = append(alertsByDate[a.ForecastDate], a.Message)
	}

	// 11. Assemble the per-period response.
	out := make([]GeneratedForecast, len(periods))
	for i, p := range periods {
		out[i] = GeneratedForecast{
			SKU:              sku,
			ForecastPeriod:   p.Date.Format("2006-01-02"),
			BaseForecast:     p.BaseValue,
			UpperBound:       p.UpperBound,
			LowerBound:       p.LowerBound,
			ConfidenceLevel:  confidence,
			SeasonalFactor:   p.SeasonalFactor,
			TrendComponent:   p.TrendComponent,
			GeneratedAt:      generatedAt,
			ModelVersion:     modelVersion,
			DataQualityScore: score,
			DataSource:       source.Kind.String(),
			Alerts:           alertsByDate[p.Date],
		}
	}
	return out, nil
}

// qualityScore derives the heuristic [0,1] confidence measure for a run.
//
// Synthetic series are scored on their own smoothness: low variance earns a
// higher score, clamped into [0.60, 0.95]. Historical series are scored by
// backtesting: simulated periods whose date matches a recorded sale
// accumulate relative error, and the score is 1 minus the mean error,
// clamped into [0, 1]. Without any overlap the score defaults to 0.87.
func qualityScore(source forecast.HistorySource, records []domain.SalesRecord, periods []forecast.Period) float64 {
	switch source.Kind {
	case forecast.SourceSynthetic:
		qs := make([]float64, len(source.Points))
		for i, p := range source.Points {
			qs[i] = p.Quantity
		}
		return forecast.Clamp(1-forecast.CoefVariation(qs), 0.60, 0.95)

	default:
		actualByDate := make(map[time.Time]float64, len(records))
		for _, r := range records {
			actualByDate[r.Date.UTC()] = float64(r.Quantity)
		}

		var errSum float64
		var matches int
		for _, p := range periods {
			actual, ok := actualByDate[p.Date.UTC()]
			if !ok || actual == 0 {
				continue
			}
			errSum += math.Abs(p.BaseValue-actual) / actual
			matches++
		}
		if matches == 0 {
			return defaultQualityScore
		}
		return forecast.Clamp(1-errSum/float64(matches), 0, 1)
	}
}

func versionSuffix(kind forecast.SourceKind) string {
	if kind == forecast.SourceSynthetic {
		return "synthetic"
	}
	return "historical"
}

// History returns a page of stored forecasts matching the filter, ordered
// by forecast date ascending, plus the total match count.
func (s *ForecastService) History(ctx context.Context, userID string, f ForecastHistoryFilter, page, pageSize int) ([]domain.Forecast, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	total, err := s.Repo.CountForecasts(ctx, s.DB, userID, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Forecast{}, 0, nil
	}
	items, err := s.Repo.ListForecastsPage(ctx, s.DB, userID, f, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Metrics aggregates stored forecasts for (userID, sku); empty sku covers
// all SKUs.
func (s *ForecastService) Metrics(ctx context.Context, userID, sku string) (ForecastMetrics, error) {
	return s.Repo.AggregateForecasts(ctx, s.DB, userID, sku)
}
