package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/avaldes/go-forecast-backend/internal/domain"
	"github.com/avaldes/go-forecast-backend/internal/forecast"
)

type fakeForecastRepo struct {
	cfg       *domain.Configuration
	cfgErr    error
	sales     []domain.SalesRecord
	salesErr  error
	existing  map[time.Time]bool
	inserted  []domain.Forecast
	insertErr error

	total   int64
	page    []domain.Forecast
	metrics ForecastMetrics

	pageCalls int
}

func (f *fakeForecastRepo) GetConfig(context.Context, *gorm.DB, string) (*domain.Configuration, error) {
	return f.cfg, f.cfgErr
}

func (f *fakeForecastRepo) ListSalesHistory(context.Context, *gorm.DB, string, string) ([]domain.SalesRecord, error) {
	return f.sales, f.salesErr
}

func (f *fakeForecastRepo) ExistingForecastDates(_ context.Context, _ *gorm.DB, _, _ string, dates []time.Time) (map[time.Time]bool, error) {
	out := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		if f.existing[d.UTC()] {
			out[d.UTC()] = true
		}
	}
	return out, nil
}

func (f *fakeForecastRepo) InsertForecasts(_ context.Context, _ *gorm.DB, records []domain.Forecast) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, records...)
	return nil
}

func (f *fakeForecastRepo) CountForecasts(context.Context, *gorm.DB, string, ForecastHistoryFilter) (int64, error) {
	return f.total, nil
}

func (f *fakeForecastRepo) ListForecastsPage(context.Context, *gorm.DB, string, ForecastHistoryFilter, int, int) ([]domain.Forecast, error) {
	f.pageCalls++
	return f.page, nil
}

func (f *fakeForecastRepo) AggregateForecasts(context.Context, *gorm.DB, string, string) (ForecastMetrics, error) {
	return f.metrics, nil
}

type fakeAlertChecker struct {
	signals []ForecastSignal
	msgs    []AlertMessage
	err     error
}

func (f *fakeAlertChecker) Check(_ context.Context, _ string, signals []ForecastSignal) ([]AlertMessage, error) {
	f.signals = signals
	return f.msgs, f.err
}

func salesRecord(y int, m time.Month, qty int) domain.SalesRecord {
	return domain.SalesRecord{
		SKU:      "ABC123",
		Date:     time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
		Quantity: qty,
		Price:    2.50,
		Category: "bebidas",
	}
}

func testConfigRow() *domain.Configuration {
	return &domain.Configuration{
		UserID:           "user-1",
		ForecastHorizons: domain.IntSet{1, 3},
		ConfidenceLevels: domain.FloatSet{0.80, 0.95},
	}
}

func newForecastService(repo *fakeForecastRepo, alerts *fakeAlertChecker) *ForecastService {
	return &ForecastService{
		Repo:   repo,
		Alerts: alerts,
		Sim:    &forecast.Simulator{}, // no noise
		Clock: func() time.Time {
			return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
		},
	}
}

func TestGenerate_HistoricalSeries(t *testing.T) {
	repo := &fakeForecastRepo{
		cfg:   testConfigRow(),
		sales: []domain.SalesRecord{salesRecord(2024, time.January, 10), salesRecord(2024, time.February, 20)},
	}
	alerts := &fakeAlertChecker{}
	svc := newForecastService(repo, alerts)

	out, err := svc.Generate(context.Background(), "user-1", "ABC123", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// The longest horizon and highest confidence win.
	if len(out) != 3 {
		t.Fatalf("got %d periods, want 3", len(out))
	}
	first := out[0]
	if first.ForecastPeriod != "2024-03-01" {
		t.Fatalf("first period = %q", first.ForecastPeriod)
	}
	if first.ConfidenceLevel != 0.95 {
		t.Fatalf("confidence = %v", first.ConfidenceLevel)
	}
	// baseAvg 15, trend 10, no seasonal overlap.
	if math.Abs(first.BaseForecast-25) > 1e-9 {
		t.Fatalf("base forecast = %v", first.BaseForecast)
	}
	if math.Abs(first.UpperBound-(25+1.96*5)) > 1e-9 {
		t.Fatalf("upper bound = %v", first.UpperBound)
	}
	if first.DataSource != "historical" || first.ModelVersion != "v1.0-historical" {
		t.Fatalf("source tagging = %q / %q", first.DataSource, first.ModelVersion)
	}
	// No simulated period matches a recorded sale, so the default applies.
	if first.DataQualityScore != 0.87 {
		t.Fatalf("quality = %v", first.DataQualityScore)
	}

	if len(repo.inserted) != 3 {
		t.Fatalf("inserted %d rows, want 3", len(repo.inserted))
	}
	if repo.inserted[0].ModelVersion != "v1.0-historical" || repo.inserted[0].DataQuality != 0.87 {
		t.Fatalf("stored row = %+v", repo.inserted[0])
	}
	if len(alerts.signals) != 3 {
		t.Fatalf("alert evaluation saw %d signals, want 3", len(alerts.signals))
	}
}

func TestGenerate_SkipsExistingPeriods(t *testing.T) {
	repo := &fakeForecastRepo{
		cfg:   testConfigRow(),
		sales: []domain.SalesRecord{salesRecord(2024, time.January, 10), salesRecord(2024, time.February, 20)},
		existing: map[time.Time]bool{
			time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC): true,
		},
	}
	svc := newForecastService(repo, &fakeAlertChecker{})

	out, err := svc.Generate(context.Background(), "user-1", "ABC123", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// The response covers every simulated period; only new ones are written.
	if len(out) != 3 {
		t.Fatalf("got %d periods, want 3", len(out))
	}
	if len(repo.inserted) != 2 {
		t.Fatalf("inserted %d rows, want 2", len(repo.inserted))
	}
	for _, r := range repo.inserted {
		if r.ForecastDate.Month() == time.April {
			t.Fatalf("existing April period was rewritten")
		}
	}
}

func TestGenerate_SyntheticFallback(t *testing.T) {
	repo := &fakeForecastRepo{
		cfg:   testConfigRow(),
		sales: []domain.SalesRecord{salesRecord(2024, time.January, 10)}, // single point
	}
	svc := newForecastService(repo, &fakeAlertChecker{})

	out, err := svc.Generate(context.Background(), "user-1", "NEWSKU1", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d periods, want 3", len(out))
	}
	p := out[0]
	if p.DataSource != "simulated" || p.ModelVersion != "v1.0-synthetic" {
		t.Fatalf("source tagging = %q / %q", p.DataSource, p.ModelVersion)
	}
	if p.DataQualityScore < 0.60 || p.DataQualityScore > 0.95 {
		t.Fatalf("synthetic quality %v outside [0.60, 0.95]", p.DataQualityScore)
	}
}

func TestGenerate_SyntheticIsReproducible(t *testing.T) {
	run := func() []GeneratedForecast {
		repo := &fakeForecastRepo{cfg: testConfigRow()}
		svc := newForecastService(repo, &fakeAlertChecker{})
		out, err := svc.Generate(context.Background(), "user-1", "ABC123", "")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i].BaseForecast != b[i].BaseForecast || a[i].ForecastPeriod != b[i].ForecastPeriod {
			t.Fatalf("period %d differs between runs", i)
		}
	}
}

func TestGenerate_ExplicitPeriod(t *testing.T) {
	repo := &fakeForecastRepo{
		cfg:   testConfigRow(),
		sales: []domain.SalesRecord{salesRecord(2024, time.January, 10), salesRecord(2024, time.February, 20)},
	}
	svc := newForecastService(repo, &fakeAlertChecker{})

	out, err := svc.Generate(context.Background(), "user-1", "ABC123", "2024-06-01")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out[0].ForecastPeriod != "2024-07-01" {
		t.Fatalf("first period = %q", out[0].ForecastPeriod)
	}

	if _, err := svc.Generate(context.Background(), "user-1", "ABC123", "junk"); !errors.Is(err, ErrInvalidForecastPeriod) {
		t.Fatalf("bad period: %v", err)
	}
}

func TestGenerate_AttachesAlertsByDate(t *testing.T) {
	march := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeForecastRepo{
		cfg:   testConfigRow(),
		sales: []domain.SalesRecord{salesRecord(2024, time.January, 10), salesRecord(2024, time.February, 20)},
	}
	alerts := &fakeAlertChecker{msgs: []AlertMessage{{Message: "Sales forecast too low for SKU ABC123: 25", ForecastDate: march}}}
	svc := newForecastService(repo, alerts)

	out, err := svc.Generate(context.Background(), "user-1", "ABC123", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(out[0].Alerts) != 1 {
		t.Fatalf("March alerts = %v", out[0].Alerts)
	}
	if len(out[1].Alerts) != 0 {
		t.Fatalf("April alerts = %v", out[1].Alerts)
	}
}

func TestGenerate_Errors(t *testing.T) {
	svc := newForecastService(&fakeForecastRepo{cfgErr: gorm.ErrRecordNotFound}, &fakeAlertChecker{})
	if _, err := svc.Generate(context.Background(), "user-1", "ABC123", ""); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("missing config: %v", err)
	}

	repo := &fakeForecastRepo{
		cfg:       testConfigRow(),
		sales:     []domain.SalesRecord{salesRecord(2024, time.January, 10), salesRecord(2024, time.February, 20)},
		insertErr: errors.New("disk full"),
	}
	svc = newForecastService(repo, &fakeAlertChecker{})
	if _, err := svc.Generate(context.Background(), "user-1", "ABC123", ""); !errors.Is(err, ErrDatabase) {
		t.Fatalf("insert failure should wrap ErrDatabase: %v", err)
	}

	// Invalid stored configuration surfaces the simulator's sentinel.
	repo = &fakeForecastRepo{
		cfg: &domain.Configuration{ForecastHorizons: domain.IntSet{9}, ConfidenceLevels: domain.FloatSet{0.95}},
	}
	svc = newForecastService(repo, &fakeAlertChecker{})
	if _, err := svc.Generate(context.Background(), "user-1", "ABC123", ""); !errors.Is(err, forecast.ErrInvalidHorizon) {
		t.Fatalf("oversized horizon: %v", err)
	}
}

func TestHistory_EmptySkipsPageQuery(t *testing.T) {
	repo := &fakeForecastRepo{total: 0}
	svc := newForecastService(repo, &fakeAlertChecker{})

	items, total, err := svc.History(context.Background(), "user-1", ForecastHistoryFilter{}, 0, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("empty history = %v, %d", items, total)
	}
	if repo.pageCalls != 0 {
		t.Fatalf("page query ran on empty history")
	}
}

func TestHistory_ReturnsPageAndTotal(t *testing.T) {
	repo := &fakeForecastRepo{total: 7, page: []domain.Forecast{{SKU: "ABC123"}}}
	svc := newForecastService(repo, &fakeAlertChecker{})

	items, total, err := svc.History(context.Background(), "user-1", ForecastHistoryFilter{SKU: "ABC123"}, 2, 5)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 7 || len(items) != 1 {
		t.Fatalf("history = %v, %d", items, total)
	}
}

func TestReductionPolicies(t *testing.T) {
	if got := ReduceHorizon(domain.IntSet{1, 3, 6}); got != 6 {
		t.Fatalf("ReduceHorizon = %d", got)
	}
	if got := ReduceConfidence(domain.FloatSet{0.80, 0.95, 0.90}); got != 0.95 {
		t.Fatalf("ReduceConfidence = %v", got)
	}
}
