// Package services – UploadService
//
// This file implements sales-file ingestion: parse an uploaded CSV or Excel
// file, run the batch validator, and bulk-insert canonical rows with
// conflict-ignoring semantics so overlapping re-uploads stay idempotent.
package services

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/avaldes/go-forecast-backend/internal/domain"
	"github.com/avaldes/go-forecast-backend/internal/ingest"
)

// SalesRepo defines the repository contract required by UploadService.
type SalesRepo interface {
	// InsertSalesBatch bulk-inserts rows, skipping (user, sku, date)
	// collisions, and reports how many were written.
	InsertSalesBatch(ctx context.Context, db *gorm.DB, records []domain.SalesRecord) (int64, error)
}

// UploadResult summarizes one processed file.
type UploadResult struct {
	TotalProcessed int       `json:"total_processed"`
	Inserted       int64     `json:"inserted"`
	Skipped        int64     `json:"skipped"`
	FileName       string    `json:"file_name"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// UploadService ingests uploaded sales files.
type UploadService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the sales repository used by this service.
	Repo SalesRepo
	// BatchSize caps rows per insert statement; 0 means 1000.
	BatchSize int
	// Clock supplies the upload timestamp; nil means time.Now.
	Clock func() time.Time
}

const defaultBatchSize = 1000

// Process parses, validates, and persists one uploaded file.
//
// Validation errors pass through untouched (ingest.ErrNoData,
// *ingest.MissingColumnsError, *ingest.BatchError) so the transport layer
// can surface the complete per-row diagnostics list.
func (s *UploadService) Process(ctx context.Context, userID, filename, contentType string, data []byte) (*UploadResult, error) {
	rows, err := parseByType(filename, contentType, data)
	if err != nil {
		return nil, err
	}

	validated, err := ingest.ValidateRows(rows)
	if err != nil {
		return nil, err
	}

	uploadedAt := time.Now().UTC()
	if s.Clock != nil {
		uploadedAt = s.Clock().UTC()
	}

	records := make([]domain.SalesRecord, len(validated))
	for i, v := range validated {
		records[i] = domain.SalesRecord{
			UserID:      userID,
			SKU:         v.SKU,
			Date:        v.Date,
			Quantity:    v.Quantity,
			Price:       v.Price,
			Promotion:   v.Promotion,
			Category:    v.Category,
			FileName:    filename,
			UploadedAt:  uploadedAt,
			DataVersion: 1,
		}
	}

	batch := s.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	var inserted int64
	for start := 0; start < len(records); start += batch {
		end := start + batch
		if end > len(records) {
			end = len(records)
		}
		n, err := s.Repo.InsertSalesBatch(ctx, s.DB, records[start:end])
		if err != nil {
			return nil, err
		}
		inserted += n
	}

	return &UploadResult{
		TotalProcessed: len(validated),
		Inserted:       inserted,
		Skipped:        int64(len(validated)) - inserted,
		FileName:       filename,
		UploadedAt:     uploadedAt,
	}, nil
}

func parseByType(filename, contentType string, data []byte) ([]ingest.Row, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case ct == "text/csv" || ct == "application/csv" || ext == ".csv":
		return ingest.ParseCSV(data)
	case ct == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" ||
		ct == "application/vnd.ms-excel" ||
		ext == ".xlsx" || ext == ".xls":
		return ingest.ParseXLSX(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}
