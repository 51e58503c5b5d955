// Handler wiring for the public API.
//
// This file declares the service contracts the HTTP layer consumes and the
// Handlers aggregate that binds them. Handlers are transport-thin: they
// validate input, call application services, and translate results into
// HTTP responses.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/avaldes/go-forecast-backend/internal/domain"
	"github.com/avaldes/go-forecast-backend/internal/http/middleware"
	"github.com/avaldes/go-forecast-backend/internal/services"
	"github.com/avaldes/go-forecast-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AuthService defines account registration and login operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AuthService interface {
	// Register creates a new account from an email and password.
	Register(ctx context.Context, email, password string) (*domain.User, error)
	// Login verifies credentials and returns a signed access token.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// UploadService defines sales-file ingestion consumed by HTTP handlers.
type UploadService interface {
	// Process parses, validates, and persists one uploaded file.
	Process(ctx context.Context, userID, filename, contentType string, data []byte) (*services.UploadResult, error)
}

// ForecastService defines forecast generation and retrieval operations.
type ForecastService interface {
	// Generate runs the full forecast pipeline for (userID, sku).
	Generate(ctx context.Context, userID, sku, period string) ([]services.GeneratedForecast, error)
	// History returns a page of stored forecasts matching the filter.
	History(ctx context.Context, userID string, f services.ForecastHistoryFilter, page, pageSize int) ([]domain.Forecast, int64, error)
	// Metrics aggregates stored forecasts for (userID, sku).
	Metrics(ctx context.Context, userID, sku string) (services.ForecastMetrics, error)
}

// ConfigService defines forecast configuration operations.
type ConfigService interface {
	// Upsert validates and saves the user's configuration.
	Upsert(ctx context.Context, userID string, in services.ConfigInput) (*domain.Configuration, error)
	// Get returns the user's configuration.
	Get(ctx context.Context, userID string) (*domain.Configuration, error)
}

// AlertService defines threshold management and alert history operations.
type AlertService interface {
	// CreateThreshold validates and persists a new alert threshold.
	CreateThreshold(ctx context.Context, userID string, in services.ThresholdInput) (*domain.AlertThreshold, error)
	// UpdateThreshold validates and updates an existing threshold.
	UpdateThreshold(ctx context.Context, userID, thresholdID string, in services.ThresholdInput) error
	// ListThresholds returns the user's thresholds.
	ListThresholds(ctx context.Context, userID string) ([]domain.AlertThreshold, error)
	// ListAlerts returns a page of the user's alert history.
	ListAlerts(ctx context.Context, userID string, page, pageSize int) ([]domain.Alert, int64, error)
}

// DashboardService defines sales aggregation for dashboard views.
type DashboardService interface {
	// Summary aggregates a range and compares it to the previous month.
	Summary(ctx context.Context, userID, start, end string) (*services.DashboardSummary, error)
	// Trends buckets the last 12 months of sales per month.
	Trends(ctx context.Context, userID string) ([]services.TrendPoint, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for auth, uploads, forecasts,
// configuration, alerts, and the dashboard. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	authSvc      AuthService
	uploadSvc    UploadService
	forecastSvc  ForecastService
	configSvc    ConfigService
	alertSvc     AlertService
	dashboardSvc DashboardService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(authSvc AuthService, uploadSvc UploadService, forecastSvc ForecastService, configSvc ConfigService, alertSvc AlertService, dashboardSvc DashboardService) *Handlers {
	return &Handlers{
		authSvc:      authSvc,
		uploadSvc:    uploadSvc,
		forecastSvc:  forecastSvc,
		configSvc:    configSvc,
		alertSvc:     alertSvc,
		dashboardSvc: dashboardSvc,
	}
}

// userID extracts the authenticated user id from the Gin context (set by the
// auth middleware). If absent, it falls back to "X-User-ID" header (tests
// use it). It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if uid := middleware.UserIDFrom(c); uid != "" {
		return uid
	}
	if c != nil && c.Request != nil {
		if h := c.GetHeader("X-User-ID"); h != "" {
			return h
		}
	}
	return ""
}

//
// Shared DTOs / helpers
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// newPagination derives the metadata block for one result page.
func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
