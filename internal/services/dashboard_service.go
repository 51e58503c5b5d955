// Package services – DashboardService
//
// This file implements dashboard aggregation: month-over-month summary
// numbers and a rolling 12-month trend series over recorded sales.
package services

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/avaldes/go-forecast-backend/internal/domain"
)

// DashboardRepo defines the repository contract required by
// DashboardService.
type DashboardRepo interface {
	SalesInRange(ctx context.Context, db *gorm.DB, userID string, start, end time.Time) ([]domain.SalesRecord, error)
	CountDistinctSKUs(ctx context.Context, db *gorm.DB, userID string, start, end time.Time) (int64, error)
	CountDistinctCategories(ctx context.Context, db *gorm.DB, userID string, start, end time.Time) (int64, error)
}

// DashboardSummary is the headline card data for a date range compared to
// the preceding month.
type DashboardSummary struct {
	TotalSales      int     `json:"total_sales"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalProducts   int64   `json:"total_products"`
	TotalCategories int64   `json:"total_categories"`
	SalesChange     float64 `json:"sales_change"`
	RevenueChange   float64 `json:"revenue_change"`
}

// TrendPoint is one month's aggregate in the trends series.
type TrendPoint struct {
	Month    string  `json:"month"` // YYYY-MM
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// DashboardService aggregates sales history for dashboard views.
type DashboardService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the sales repository used by this service.
	Repo DashboardRepo
	// Clock anchors default ranges; nil means time.Now.
	Clock func() time.Time
}

func (s *DashboardService) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// Summary aggregates the given range (defaulting to the current calendar
// month) and compares it to the same range shifted one month back. Change
// percentages are 0 when the previous range had no sales.
func (s *DashboardService) Summary(ctx context.Context, userID string, startStr, endStr string) (*DashboardSummary, error) {
	now := s.now()
	start := startOfMonth(now)
	end := endOfMonth(now)

	if t, err := time.Parse("2006-01-02", startStr); err == nil {
		start = t.UTC()
	}
	if t, err := time.Parse("2006-01-02", endStr); err == nil {
		end = t.UTC()
	}

	prevStart := start.AddDate(0, -1, 0)
	prevEnd := end.AddDate(0, -1, 0)

	current, err := s.Repo.SalesInRange(ctx, s.DB, userID, start, end)
	if err != nil {
		return nil, err
	}
	previous, err := s.Repo.SalesInRange(ctx, s.DB, userID, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	curSales, curRevenue := totals(current)
	prevSales, prevRevenue := totals(previous)

	products, err := s.Repo.CountDistinctSKUs(ctx, s.DB, userID, start, end)
	if err != nil {
		return nil, err
	}
	categories, err := s.Repo.CountDistinctCategories(ctx, s.DB, userID, start, end)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalSales:      curSales,
		TotalRevenue:    math.Round(curRevenue),
		TotalProducts:   products,
		TotalCategories: categories,
		SalesChange:     pctChange(float64(prevSales), float64(curSales)),
		RevenueChange:   pctChange(prevRevenue, curRevenue),
	}, nil
}

// Trends buckets the last 12 calendar months of sales into per-month
// quantity and revenue totals. Months without sales appear with zeros.
func (s *DashboardService) Trends(ctx context.Context, userID string) ([]TrendPoint, error) {
	now := s.now()
	end := endOfMonth(now)
	start := startOfMonth(now).AddDate(0, -11, 0)

	records, err := s.Repo.SalesInRange(ctx, s.DB, userID, start, end)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*TrendPoint, 12)
	out := make([]TrendPoint, 0, 12)
	for i := 0; i < 12; i++ {
		m := start.AddDate(0, i, 0).Format("2006-01")
		out = append(out, TrendPoint{Month: m})
		byMonth[m] = &out[len(out)-1]
	}

	for _, r := range records {
		if p, ok := byMonth[r.Date.Format("2006-01")]; ok {
			p.Quantity += r.Quantity
			p.Revenue += float64(r.Quantity) * r.Price
		}
	}
	for i := range out {
		out[i].Revenue = math.Round(out[i].Revenue*100) / 100
	}
	return out, nil
}

func totals(records []domain.SalesRecord) (int, float64) {
	var qty int
	var revenue float64
	for _, r := range records {
		qty += r.Quantity
		revenue += float64(r.Quantity) * r.Price
	}
	return qty, revenue
}

func pctChange(prev, cur float64) float64 {
	if prev <= 0 {
		return 0
	}
	return math.Round((cur-prev)/prev*100*100) / 100
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, -1)
}
