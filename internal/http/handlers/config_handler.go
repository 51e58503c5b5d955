// Configuration HTTP handlers.
//
// This file exposes REST endpoints for the per-user forecast configuration:
//   - PUT /config (create or replace)
//   - GET /config (fetch current)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avaldes/go-forecast-backend/internal/services"
)

// SaveConfig creates or replaces the caller's forecast configuration.
//
// Responses:
//   - 200 with the stored configuration,
//   - 400 on malformed payloads or out-of-range horizon/confidence sets or
//     default-threshold values,
//   - 500 on storage failures.
func (h *Handlers) SaveConfig(c *gin.Context) {
	var in services.ConfigInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cfg, err := h.configSvc.Upsert(c.Request.Context(), userID(c), in)
	switch {
	case errors.Is(err, services.ErrInvalidHorizonSet):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "forecast_horizons must contain values between 1 and 6 months")
		return
	case errors.Is(err, services.ErrInvalidConfidenceSet):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "confidence_levels must contain 0.80, 0.90, or 0.95")
		return
	case errors.Is(err, services.ErrInvalidMetric), errors.Is(err, services.ErrInvalidCondition), errors.Is(err, services.ErrThresholdRange):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not save configuration")
		return
	}

	ok(c, http.StatusOK, cfg)
}

// GetConfig returns the caller's stored forecast configuration.
//
// Responses:
//   - 200 with the configuration,
//   - 404 when none has been saved yet,
//   - 500 on storage failures.
func (h *Handlers) GetConfig(c *gin.Context) {
	cfg, err := h.configSvc.Get(c.Request.Context(), userID(c))
	switch {
	case errors.Is(err, services.ErrNoConfig):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no forecast configuration found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load configuration")
		return
	}
	ok(c, http.StatusOK, cfg)
}
