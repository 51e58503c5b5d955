// Package services implements the business logic for forecast generation,
// alert evaluation, sales ingestion, configuration, dashboards, and
// authentication. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Forecast orchestration errors.
var (
	// ErrNoConfig indicates the user has never saved a forecast
	// configuration, which generation requires.
	ErrNoConfig = errors.New("no forecast configuration found for user")

	// ErrInvalidForecastPeriod is returned when a caller-supplied forecast
	// period does not parse as an ISO date.
	ErrInvalidForecastPeriod = errors.New("invalid forecast period, expected YYYY-MM-DD")

	// ErrDatabase wraps storage failures in the orchestration path so the
	// caller sees one stable kind for all persistence problems.
	ErrDatabase = errors.New("database error")
)

// Threshold and configuration validation errors.
var (
	// ErrInvalidMetric is returned for threshold metrics outside
	// {precision, sales}.
	ErrInvalidMetric = errors.New("invalid metric, must be 'precision' or 'sales'")

	// ErrInvalidCondition is returned for threshold conditions outside
	// {below, above}.
	ErrInvalidCondition = errors.New("invalid condition, must be 'below' or 'above'")

	// ErrThresholdRange is returned when minThreshold >= maxThreshold.
	ErrThresholdRange = errors.New("minThreshold must be less than maxThreshold")

	// ErrThresholdNotFound indicates the threshold does not exist or is not
	// owned by the user.
	ErrThresholdNotFound = errors.New("alert threshold not found")

	// ErrInvalidHorizonSet is returned when the configured horizon set is
	// empty or contains values outside [1, 6].
	ErrInvalidHorizonSet = errors.New("forecast horizons must be a non-empty set of values between 1 and 6")

	// ErrInvalidConfidenceSet is returned when the configured confidence set
	// is empty or contains unsupported levels.
	ErrInvalidConfidenceSet = errors.New("confidence levels must be a non-empty subset of {0.80, 0.90, 0.95}")
)

// Upload errors.
var (
	// ErrUnsupportedFormat is returned for uploads that are neither CSV nor
	// Excel.
	ErrUnsupportedFormat = errors.New("unsupported file format, expected CSV or XLSX")
)

// Authentication errors.
var (
	// ErrEmailTaken is returned when registering an email that already has
	// an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for unknown emails or wrong
	// passwords; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned for passwords shorter than 8 characters.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidEmail is returned for malformed email addresses.
	ErrInvalidEmail = errors.New("invalid email address")
)
