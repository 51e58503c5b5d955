// Upload HTTP handler.
//
// This file exposes POST /upload: a multipart endpoint that accepts one CSV
// or Excel sales file, runs the all-or-nothing batch validator, and reports
// how many rows were inserted versus skipped as already-known duplicates.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avaldes/go-forecast-backend/internal/ingest"
	"github.com/avaldes/go-forecast-backend/internal/services"
)

// UploadErrorResponse is the error envelope for rejected files, extended
// with the complete list of per-row diagnostics so a client can fix every
// problem in one pass.
type UploadErrorResponse struct {
	ErrorResponse
	Details []string `json:"details,omitempty"`
}

// Upload ingests one sales file sent as multipart field "file".
//
// Responses:
//   - 200 with the upload summary,
//   - 400 when the file is missing, empty, of an unsupported type, or fails
//     validation (with per-row details),
//   - 500 on storage failures.
func (h *Handlers) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, `multipart field "file" is required`)
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read uploaded file")
		return
	}

	res, err := h.uploadSvc.Process(c.Request.Context(), userID(c), fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		failUpload(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// failUpload translates ingestion errors into HTTP responses. Validation
// failures carry the full diagnostics list; anything else is a storage
// problem.
func failUpload(c *gin.Context, err error) {
	reqID := c.Writer.Header().Get("X-Request-ID")

	var batch *ingest.BatchError
	if errors.As(err, &batch) {
		c.AbortWithStatusJSON(http.StatusBadRequest, UploadErrorResponse{
			ErrorResponse: ErrorResponse{RequestID: reqID, Code: ErrCodeValidationFailed, Message: "file validation failed; no rows were saved"},
			Details:       batch.Messages(),
		})
		return
	}

	var missing *ingest.MissingColumnsError
	if errors.As(err, &missing) {
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, missing.Error())
		return
	}

	switch {
	case errors.Is(err, ingest.ErrNoData), errors.Is(err, ingest.ErrEmptyFile):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "file contains no data rows")
	case errors.Is(err, services.ErrUnsupportedFormat):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unsupported file format; upload CSV or Excel")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not store uploaded rows")
	}
}
