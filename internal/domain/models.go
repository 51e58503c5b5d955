// Package domain defines the persistence models for users, sales history,
// forecast configuration, generated forecasts, alert thresholds, and alerts.
// These types are mapped with GORM and form the core data layer of the
// demand-forecasting application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that owns sales data and forecasts.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: login identity, unique.
//   - PasswordHash: bcrypt hash, never serialized.
//   - Role: coarse authorization role ("user" by default).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(128);not null"`
	Role         string    `json:"role"       gorm:"type:varchar(16);not null;default:'user'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// SalesRecord is one observed transaction-period quantity for a SKU.
// Rows are immutable once stored; re-uploads of the same (user, sku, date)
// are ignored by the unique index rather than updated.
//
// Fields:
//   - UserID: owner of the record.
//   - SKU: alphanumeric product code (3-20 chars, validated at ingestion).
//   - Date: calendar date of the observation (normalized to UTC midnight).
//   - Quantity: units sold, [1, 100000].
//   - Price: positive unit price with at most 4 fractional digits.
//   - Promotion: whether a promotion was active for the period.
//   - Category: non-empty product category.
//   - FileName / UploadedAt / DataVersion: ingestion provenance.
type SalesRecord struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id"      gorm:"type:char(36);not null;index;uniqueIndex:ux_sales_user_sku_date,priority:1"`
	SKU         string    `json:"sku"          gorm:"type:varchar(20);not null;uniqueIndex:ux_sales_user_sku_date,priority:2"`
	Date        time.Time `json:"date"         gorm:"not null;uniqueIndex:ux_sales_user_sku_date,priority:3"`
	Quantity    int       `json:"quantity"     gorm:"not null"`
	Price       float64   `json:"price"        gorm:"not null"`
	Promotion   bool      `json:"promotion"    gorm:"not null;default:false"`
	Category    string    `json:"category"     gorm:"type:varchar(100);not null"`
	FileName    string    `json:"file_name"    gorm:"type:varchar(255)"`
	UploadedAt  time.Time `json:"uploaded_at"`
	DataVersion int       `json:"data_version" gorm:"not null;default:1"`
}

// TableName returns the database table name for SalesRecord.
func (SalesRecord) TableName() string { return "sales_records" }

// Configuration holds per-user forecast generation settings. Exactly one row
// exists per user (upsert semantics enforced by the unique index).
//
// ForecastHorizons and ConfidenceLevels are stored as multi-valued sets to
// support batch multi-horizon UIs; a single generation run reduces each set
// to a scalar (see services.ReduceHorizon / services.ReduceConfidence).
type Configuration struct {
	ID                string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	UserID            string    `json:"user_id"            gorm:"type:char(36);not null;uniqueIndex:ux_config_user"`
	ForecastHorizons  IntSet    `json:"forecast_horizons"  gorm:"type:text;not null"`
	ConfidenceLevels  FloatSet  `json:"confidence_levels"  gorm:"type:text;not null"`
	NotificationEmail bool      `json:"notification_email" gorm:"not null;default:false"`
	NotificationSMS   bool      `json:"notification_sms"   gorm:"not null;default:false"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for Configuration.
func (Configuration) TableName() string { return "configurations" }

// NotificationSettings is the channel-toggle view of a Configuration used by
// the alert evaluator.
type NotificationSettings struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// Settings extracts the notification channel toggles.
func (c *Configuration) Settings() NotificationSettings {
	return NotificationSettings{Email: c.NotificationEmail, SMS: c.NotificationSMS}
}

// Threshold metrics and conditions. Kept as plain strings in the schema;
// validation happens in the service layer before persistence.
const (
	MetricPrecision = "precision"
	MetricSales     = "sales"

	ConditionBelow = "below"
	ConditionAbove = "above"
)

// AlertThreshold is a user-defined breach rule. A NULL SKU makes the rule a
// global fallback applied to every SKU. MinThreshold < MaxThreshold is
// enforced before persistence.
type AlertThreshold struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string         `json:"user_id"       gorm:"type:char(36);not null;index"`
	SKU          *string        `json:"sku"           gorm:"type:varchar(20)"`
	Category     *string        `json:"category"      gorm:"type:varchar(100)"`
	Metric       string         `json:"metric"        gorm:"type:varchar(16);not null;check:metric IN ('precision','sales')"`
	Condition    string         `json:"condition"     gorm:"type:varchar(16);not null;check:condition IN ('below','above')"`
	MinThreshold float64        `json:"min_threshold" gorm:"not null"`
	MaxThreshold float64        `json:"max_threshold" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for AlertThreshold.
func (AlertThreshold) TableName() string { return "alert_thresholds" }

// Forecast is one simulated future period for a (user, sku) pair. Rows are
// never mutated; regeneration for an existing period is skipped by the
// unique index on (user_id, sku, forecast_date).
type Forecast struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	UserID          string    `json:"user_id"          gorm:"type:char(36);not null;index;uniqueIndex:ux_forecast_user_sku_date,priority:1"`
	SKU             string    `json:"sku"              gorm:"type:varchar(20);not null;uniqueIndex:ux_forecast_user_sku_date,priority:2"`
	ForecastDate    time.Time `json:"forecast_date"    gorm:"not null;uniqueIndex:ux_forecast_user_sku_date,priority:3"`
	BaseValue       float64   `json:"base_value"       gorm:"not null"`
	UpperBound      float64   `json:"upper_bound"      gorm:"not null"`
	LowerBound      float64   `json:"lower_bound"      gorm:"not null"`
	ConfidenceLevel float64   `json:"confidence_level" gorm:"not null"`
	SeasonalFactor  float64   `json:"seasonal_factor"  gorm:"not null;default:1"`
	TrendComponent  float64   `json:"trend_component"  gorm:"not null;default:0"`
	DataQuality     float64   `json:"data_quality"     gorm:"not null;default:0"`
	ModelVersion    string    `json:"model_version"    gorm:"type:varchar(32);not null"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// TableName returns the database table name for Forecast.
func (Forecast) TableName() string { return "forecasts" }

// Alert is a detected threshold breach. The composite unique index is the
// deduplication key: at most one alert exists per (threshold, metric,
// condition, sku, forecast date), regardless of how many evaluation runs
// observe the same breach.
type Alert struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string    `json:"user_id"       gorm:"type:char(36);not null;index"`
	ThresholdID  string    `json:"threshold_id"  gorm:"type:char(36);not null;uniqueIndex:ux_alert_dedup,priority:1"`
	Metric       string    `json:"metric"        gorm:"type:varchar(16);not null;uniqueIndex:ux_alert_dedup,priority:2"`
	Condition    string    `json:"condition"     gorm:"type:varchar(16);not null;uniqueIndex:ux_alert_dedup,priority:3"`
	SKU          string    `json:"sku"           gorm:"type:varchar(20);not null;uniqueIndex:ux_alert_dedup,priority:4"`
	ForecastDate time.Time `json:"forecast_date" gorm:"not null;uniqueIndex:ux_alert_dedup,priority:5"`
	Message      string    `json:"message"       gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for Alert.
func (Alert) TableName() string { return "alerts" }
