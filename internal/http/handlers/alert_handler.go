// Alert HTTP handlers.
//
// This file exposes REST endpoints for alert thresholds and alert history:
//   - POST /alerts/thresholds      (create)
//   - PUT  /alerts/thresholds/{id} (update)
//   - GET  /alerts/thresholds      (list)
//   - GET  /alerts                 (history, paginated)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avaldes/go-forecast-backend/internal/domain"
	"github.com/avaldes/go-forecast-backend/internal/services"
)

// ListAlertsResponse wraps a page of alert history.
type ListAlertsResponse struct {
	Alerts     []domain.Alert `json:"alerts"`
	Pagination Pagination     `json:"pagination"`
}

// CreateThreshold creates a new alert threshold for the caller.
//
// Responses:
//   - 201 with the created threshold,
//   - 400 on malformed payloads, unknown metric/condition values, or
//     min >= max ranges,
//   - 500 on storage failures.
func (h *Handlers) CreateThreshold(c *gin.Context) {
	var in services.ThresholdInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	t, err := h.alertSvc.CreateThreshold(c.Request.Context(), userID(c), in)
	if err != nil {
		failThreshold(c, err)
		return
	}
	ok(c, http.StatusCreated, t)
}

// UpdateThreshold updates an existing threshold owned by the caller.
//
// Responses:
//   - 204 on success,
//   - 400 on malformed payloads or invalid values,
//   - 404 when the threshold does not exist or belongs to someone else,
//   - 500 on storage failures.
func (h *Handlers) UpdateThreshold(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "threshold id is required")
		return
	}

	var in services.ThresholdInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.alertSvc.UpdateThreshold(c.Request.Context(), userID(c), id, in)
	switch {
	case errors.Is(err, services.ErrThresholdNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "threshold not found")
		return
	case err != nil:
		failThreshold(c, err)
		return
	}
	noContent(c)
}

// ListThresholds returns every threshold owned by the caller.
func (h *Handlers) ListThresholds(c *gin.Context) {
	items, err := h.alertSvc.ListThresholds(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list thresholds")
		return
	}
	ok(c, http.StatusOK, items)
}

// ListAlerts returns the caller's alert history, most recent first,
// paginated.
func (h *Handlers) ListAlerts(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.alertSvc.ListAlerts(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list alerts")
		return
	}
	ok(c, http.StatusOK, ListAlertsResponse{Alerts: items, Pagination: newPagination(page, pageSize, total)})
}

// failThreshold maps threshold validation errors onto 400s and everything
// else onto a 500.
func failThreshold(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidMetric):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, `metric must be "precision" or "sales"`)
	case errors.Is(err, services.ErrInvalidCondition):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, `condition must be "below" or "above"`)
	case errors.Is(err, services.ErrThresholdRange):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "min_threshold must be lower than max_threshold")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not save threshold")
	}
}
