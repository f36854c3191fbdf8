package chi

import (
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/result"
	indexinguc "github.com/kailas-cloud/facilitydex/internal/usecase/indexing"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeInvalidDataset     ErrorCode = "invalid_dataset"
	ErrorCodeMissingTranslation ErrorCode = "missing_translation"
	ErrorCodeIndexingInProgress ErrorCode = "indexing_in_progress"
	ErrorCodeDumpLimitExceeded  ErrorCode = "dump_limit_exceeded"
	ErrorCodeRetrievalFailed    ErrorCode = "retrieval_failed"
	ErrorCodeIndexingFailed     ErrorCode = "indexing_failed"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchResponse is one page of facilities.
type SearchResponse struct {
	Items    []result.Facility `json:"items"`
	From     int               `json:"from"`
	Size     int               `json:"size"`
	NextFrom *int              `json:"next_from,omitempty"`
}

// ListResponse wraps reference listings.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ImportResponse summarizes a finished indexing run.
type ImportResponse struct {
	RunID               string                `json:"run_id"`
	DurationMs          int64                 `json:"duration_ms"`
	AdministrativeDepth int                   `json:"administrative_depth"`
	Indexed             map[document.Type]int `json:"indexed"`
	Skipped             []indexinguc.Entry    `json:"skipped"`
	Unresolved          []indexinguc.Entry    `json:"unresolved"`
}

func importResponse(r *indexinguc.Report) ImportResponse {
	return ImportResponse{
		RunID:               r.RunID,
		DurationMs:          r.Duration.Milliseconds(),
		AdministrativeDepth: r.AdministrativeDepth,
		Indexed:             r.Indexed,
		Skipped:             r.Skipped,
		Unresolved:          r.Unresolved,
	}
}
