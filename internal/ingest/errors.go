// Package ingest converts heterogeneous raw tabular rows (free-form column
// headers, mixed date formats, loose boolean encodings) into canonical sales
// records, or fails with a complete list of per-row diagnostics.
//
// This file centralizes the error taxonomy. Validation is all-or-nothing for
// a batch: every violation across every row is collected before failing, so
// a caller can present a complete correction list in one round trip.
package ingest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoData is returned when a batch contains no rows at all.
var ErrNoData = errors.New("no data rows found in file")

// Sentinel causes for individual row violations. RowError wraps exactly one
// of these, so callers can match with errors.Is.
var (
	ErrInvalidSKU       = errors.New("invalid sku")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidPromotion = errors.New("invalid promotion")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrDuplicateRow     = errors.New("duplicate sku/date row")
)

// MissingColumnsError reports canonical fields that could not be resolved
// against any row's headers. It is a batch-level failure: no per-row
// validation output accompanies it.
type MissingColumnsError struct {
	// Fields lists every unresolved canonical field, sorted.
	Fields []Field
}

// Error implements the error interface.
func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	sort.Strings(names)
	return "missing required columns: " + strings.Join(names, ", ")
}

// RowError is a single violation on a single source row.
//
// Row is the 1-based row number as a spreadsheet user sees it: source row N
// (0-based) is reported as N+2, accounting for the header row.
type RowError struct {
	Row   int
	Field Field
	Value string
	cause error
}

// Error implements the error interface.
func (e *RowError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%v at row %d", e.cause, e.Row)
	}
	return fmt.Sprintf("%v at row %d: %q", e.cause, e.Row, e.Value)
}

// Unwrap exposes the sentinel cause for errors.Is matching.
func (e *RowError) Unwrap() error { return e.cause }

// BatchError aggregates every row violation found in a batch.
type BatchError struct {
	Rows []*RowError
}

// Error implements the error interface, listing every violation.
func (e *BatchError) Error() string {
	msgs := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		msgs[i] = r.Error()
	}
	return "validation errors:\n" + strings.Join(msgs, "\n")
}

// Messages returns the individual violation messages for transport layers
// that want to surface them as a list.
func (e *BatchError) Messages() []string {
	msgs := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		msgs[i] = r.Error()
	}
	return msgs
}

func rowErr(sourceIdx int, field Field, value string, cause error) *RowError {
	return &RowError{Row: sourceIdx + 2, Field: field, Value: value, cause: cause}
}
