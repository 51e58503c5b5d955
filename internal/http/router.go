// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, authentication, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/avaldes/go-forecast-backend/internal/config"
	"github.com/avaldes/go-forecast-backend/internal/domain"
	"github.com/avaldes/go-forecast-backend/internal/forecast"
	"github.com/avaldes/go-forecast-backend/internal/http/handlers"
	"github.com/avaldes/go-forecast-backend/internal/http/middleware"
	"github.com/avaldes/go-forecast-backend/internal/notify"
	"github.com/avaldes/go-forecast-backend/internal/repo"
	"github.com/avaldes/go-forecast-backend/internal/services"
)

// userRepoShim adapts the repository free functions to the services.UserRepo
// interface expected by the AuthService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type userRepoShim struct{}

func (userRepoShim) CreateUser(ctx context.Context, db *gorm.DB, email, passwordHash string) (*domain.User, error) {
	return repo.CreateUser(ctx, db, email, passwordHash)
}

func (userRepoShim) FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	return repo.FindUserByEmail(ctx, db, email)
}

// salesRepoShim adapts repo free functions to services.SalesRepo and
// services.DashboardRepo.
type salesRepoShim struct{}

func (salesRepoShim) InsertSalesBatch(ctx context.Context, db *gorm.DB, records []domain.SalesRecord) (int64, error) {
	return repo.InsertSalesBatch(ctx, db, records)
}

func (salesRepoShim) SalesInRange(ctx context.Context, db *gorm.DB, userID string, start, end time.Time) ([]domain.SalesRecord, error) {
	return repo.SalesInRange(ctx, db, userID, start, end)
}

func (salesRepoShim) CountDistinctSKUs(ctx context.Context, db *gorm.DB, userID string, start, end time.Time) (int64, error) {
	return repo.CountDistinctSKUs(ctx, db, userID, start, end)
}

func (salesRepoShim) CountDistinctCategories(ctx context.Context, db *gorm.DB, userID string, start, end time.Time) (int64, error) {
	return repo.CountDistinctCategories(ctx, db, userID, start, end)
}

// forecastRepoShim adapts repo free functions to services.ForecastRepo,
// converting between the service-level and repo-level filter and aggregate
// shapes.
type forecastRepoShim struct{}

func (forecastRepoShim) GetConfig(ctx context.Context, db *gorm.DB, userID string) (*domain.Configuration, error) {
	return repo.GetConfig(ctx, db, userID)
}

func (forecastRepoShim) ListSalesHistory(ctx context.Context, db *gorm.DB, userID, sku string) ([]domain.SalesRecord, error) {
	return repo.ListSalesHistory(ctx, db, userID, sku)
}

func (forecastRepoShim) ExistingForecastDates(ctx context.Context, db *gorm.DB, userID, sku string, dates []time.Time) (map[time.Time]bool, error) {
	return repo.ExistingForecastDates(ctx, db, userID, sku, dates)
}

func (forecastRepoShim) InsertForecasts(ctx context.Context, db *gorm.DB, records []domain.Forecast) error {
	return repo.InsertForecasts(ctx, db, records)
}

func (forecastRepoShim) CountForecasts(ctx context.Context, db *gorm.DB, userID string, f services.ForecastHistoryFilter) (int64, error) {
	return repo.CountForecasts(ctx, db, userID, toRepoFilter(f))
}

func (forecastRepoShim) ListForecastsPage(ctx context.Context, db *gorm.DB, userID string, f services.ForecastHistoryFilter, offset, limit int) ([]domain.Forecast, error) {
	return repo.ListForecastsPage(ctx, db, userID, toRepoFilter(f), offset, limit)
}

func (forecastRepoShim) AggregateForecasts(ctx context.Context, db *gorm.DB, userID, sku string) (services.ForecastMetrics, error) {
	agg, err := repo.AggregateForecasts(ctx, db, userID, sku)
	if err != nil {
		return services.ForecastMetrics{}, err
	}
	return services.ForecastMetrics{
		Count:         agg.Count,
		AvgBaseValue:  agg.AvgBaseValue,
		AvgQuality:    agg.AvgQuality,
		LastGenerated: agg.LastGenerated,
	}, nil
}

func toRepoFilter(f services.ForecastHistoryFilter) repo.ForecastFilter {
	return repo.ForecastFilter{SKU: f.SKU, StartDate: f.StartDate, EndDate: f.EndDate}
}

// configRepoShim adapts repo free functions to services.ConfigRepo.
type configRepoShim struct{}

func (configRepoShim) GetConfig(ctx context.Context, db *gorm.DB, userID string) (*domain.Configuration, error) {
	return repo.GetConfig(ctx, db, userID)
}

func (configRepoShim) UpsertConfig(ctx context.Context, db *gorm.DB, c *domain.Configuration) error {
	return repo.UpsertConfig(ctx, db, c)
}

func (configRepoShim) FindThreshold(ctx context.Context, db *gorm.DB, userID, metric string, sku, category *string) (*domain.AlertThreshold, error) {
	return repo.FindThreshold(ctx, db, userID, metric, sku, category)
}

func (configRepoShim) CreateThreshold(ctx context.Context, db *gorm.DB, t *domain.AlertThreshold) error {
	return repo.CreateThreshold(ctx, db, t)
}

func (configRepoShim) UpdateThreshold(ctx context.Context, db *gorm.DB, userID string, t *domain.AlertThreshold) error {
	return repo.UpdateThreshold(ctx, db, userID, t)
}

// alertRepoShim adapts repo free functions to services.AlertRepo.
type alertRepoShim struct{}

func (alertRepoShim) MatchThresholds(ctx context.Context, db *gorm.DB, userID, sku string) ([]domain.AlertThreshold, error) {
	return repo.MatchThresholds(ctx, db, userID, sku)
}

func (alertRepoShim) InsertAlerts(ctx context.Context, db *gorm.DB, alerts []domain.Alert) error {
	return repo.InsertAlerts(ctx, db, alerts)
}

func (alertRepoShim) GetConfig(ctx context.Context, db *gorm.DB, userID string) (*domain.Configuration, error) {
	return repo.GetConfig(ctx, db, userID)
}

func (alertRepoShim) CreateThreshold(ctx context.Context, db *gorm.DB, t *domain.AlertThreshold) error {
	return repo.CreateThreshold(ctx, db, t)
}

func (alertRepoShim) UpdateThreshold(ctx context.Context, db *gorm.DB, userID string, t *domain.AlertThreshold) error {
	return repo.UpdateThreshold(ctx, db, userID, t)
}

func (alertRepoShim) ListThresholds(ctx context.Context, db *gorm.DB, userID string) ([]domain.AlertThreshold, error) {
	return repo.ListThresholds(ctx, db, userID)
}

func (alertRepoShim) CountAlerts(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountAlerts(ctx, db, userID)
}

func (alertRepoShim) ListAlertsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Alert, error) {
	return repo.ListAlertsPage(ctx, db, userID, offset, limit)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, health and metrics endpoints, and then mounts
// the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter (sized for spreadsheet uploads)
//  6. Response compression
//  7. Metrics
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
//  10. Auth (bearer token) on the protected group only
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(limitBody(cfg.UploadMaxBytes))

	// 6) Compress JSON responses (forecast histories get large)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db
	authSvc := &services.AuthService{
		DB:        db,
		Repo:      userRepoShim{},
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  cfg.TokenTTL,
	}
	uploadSvc := &services.UploadService{DB: db, Repo: salesRepoShim{}}
	alertSvc := &services.AlertService{
		DB:       db,
		Repo:     alertRepoShim{},
		Notifier: &notify.LogNotifier{Log: log.Logger},
		Log:      log.Logger,
	}
	forecastSvc := &services.ForecastService{
		DB:     db,
		Repo:   forecastRepoShim{},
		Alerts: alertSvc,
		Sim:    &forecast.Simulator{Noise: forecast.NewUniformNoise(cfg.NoiseSeed)},
	}
	configSvc := &services.ConfigService{DB: db, Repo: configRepoShim{}}
	dashboardSvc := &services.DashboardService{DB: db, Repo: salesRepoShim{}}

	h := handlers.New(authSvc, uploadSvc, forecastSvc, configSvc, alertSvc, dashboardSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Auth (public)
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// Everything else requires a bearer token.
		authed := api.Group("", middleware.Auth([]byte(cfg.JWTSecret)))

		// Sales uploads
		authed.POST("/upload", h.Upload)

		// Forecasts
		authed.POST("/forecasts", h.GenerateForecast)
		authed.GET("/forecasts", h.ListForecasts)
		authed.GET("/forecasts/metrics", h.ForecastMetrics)

		// Configuration
		authed.PUT("/config", h.SaveConfig)
		authed.GET("/config", h.GetConfig)

		// Alerts
		authed.POST("/alerts/thresholds", h.CreateThreshold)
		authed.PUT("/alerts/thresholds/:id", h.UpdateThreshold)
		authed.GET("/alerts/thresholds", h.ListThresholds)
		authed.GET("/alerts", h.ListAlerts)

		// Dashboard
		authed.GET("/dashboard/summary", h.DashboardSummary)
		authed.GET("/dashboard/trends", h.DashboardTrends)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
