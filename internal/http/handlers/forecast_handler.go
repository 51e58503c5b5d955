// Forecast HTTP handlers.
//
// This file exposes REST endpoints for forecast resources:
//   - POST /forecasts         (generate for one SKU)
//   - GET  /forecasts         (history, filtered + paginated)
//   - GET  /forecasts/metrics (aggregates)
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avaldes/go-forecast-backend/internal/domain"
	"github.com/avaldes/go-forecast-backend/internal/forecast"
	"github.com/avaldes/go-forecast-backend/internal/services"
)

// GenerateForecastRequest is the JSON payload for generating forecasts.
type GenerateForecastRequest struct {
	// SKU selects the product to forecast.
	SKU string `json:"sku" binding:"required" example:"ABC123"`
	// ForecastPeriod optionally anchors the projection base date (YYYY-MM-DD);
	// empty means the latest history date.
	ForecastPeriod string `json:"forecast_period" example:"2025-06-01"`
}

// GenerateForecastResponse wraps the per-period results of one run.
type GenerateForecastResponse struct {
	Message string                       `json:"message"`
	Data    []services.GeneratedForecast `json:"data"`
}

// ListForecastsResponse wraps a page of stored forecasts.
type ListForecastsResponse struct {
	Forecasts  []domain.Forecast `json:"forecasts"`
	Pagination Pagination        `json:"pagination"`
}

// GenerateForecast runs the forecast pipeline for the requested SKU.
//
// Responses:
//   - 201 with every simulated period (previously stored ones included),
//   - 400 on malformed payloads, bad periods, or invalid configuration values,
//   - 404 when the user has not saved a forecast configuration yet,
//   - 500 on storage failures.
func (h *Handlers) GenerateForecast(c *gin.Context) {
	var req GenerateForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SKU) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sku is required")
		return
	}

	data, err := h.forecastSvc.Generate(c.Request.Context(), userID(c), strings.TrimSpace(req.SKU), strings.TrimSpace(req.ForecastPeriod))
	switch {
	case errors.Is(err, services.ErrNoConfig):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no forecast configuration found; save one first")
		return
	case errors.Is(err, services.ErrInvalidForecastPeriod):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "forecast_period must be YYYY-MM-DD")
		return
	case errors.Is(err, forecast.ErrInvalidHorizon), errors.Is(err, forecast.ErrInvalidConfidenceLevel):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeGenerateFailed, "forecast generation failed")
		return
	}

	ok(c, http.StatusCreated, GenerateForecastResponse{Message: "forecast generated", Data: data})
}

// ListForecasts returns stored forecasts, optionally filtered by sku,
// start_date, and end_date (YYYY-MM-DD), paginated.
func (h *Handlers) ListForecasts(c *gin.Context) {
	page, pageSize := clampPagination(c)

	f := services.ForecastHistoryFilter{SKU: strings.TrimSpace(c.Query("sku"))}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		f.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
		f.EndDate = &t
	}

	items, total, err := h.forecastSvc.History(c.Request.Context(), userID(c), f, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list forecasts")
		return
	}
	ok(c, http.StatusOK, ListForecastsResponse{Forecasts: items, Pagination: newPagination(page, pageSize, total)})
}

// ForecastMetrics returns aggregate statistics over stored forecasts,
// optionally narrowed by the sku query parameter.
func (h *Handlers) ForecastMetrics(c *gin.Context) {
	m, err := h.forecastSvc.Metrics(c.Request.Context(), userID(c), strings.TrimSpace(c.Query("sku")))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute forecast metrics")
		return
	}
	ok(c, http.StatusOK, m)
}
