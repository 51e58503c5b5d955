// Dashboard HTTP handlers.
//
// This file exposes read-only aggregation endpoints:
//   - GET /dashboard/summary (headline cards, month-over-month)
//   - GET /dashboard/trends  (rolling 12-month series)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardSummary aggregates sales for the requested range (query params
// start_date/end_date, YYYY-MM-DD, defaulting to the current month) and
// compares it to the month before.
func (h *Handlers) DashboardSummary(c *gin.Context) {
	s, err := h.dashboardSvc.Summary(c.Request.Context(), userID(c), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute dashboard summary")
		return
	}
	ok(c, http.StatusOK, s)
}

// DashboardTrends returns per-month quantity and revenue totals for the last
// 12 calendar months, zero-filled.
func (h *Handlers) DashboardTrends(c *gin.Context) {
	points, err := h.dashboardSvc.Trends(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute sales trends")
		return
	}
	ok(c, http.StatusOK, points)
}
