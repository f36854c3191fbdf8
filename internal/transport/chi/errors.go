package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/facilitydex/internal/domain"
)

// Fallback messages for errors no handler claims.
const (
	msgRetrievalFailed = "could not retrieve results"
	msgIndexingFailed  = "indexing failed"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Validation errors carry
// caller input and are returned whole; anything else collapses to its sentinel.
func safeDomainMessage(err error) string {
	for _, s := range []error{domain.ErrInvalidRequest, domain.ErrInvalidDataset, domain.ErrMissingTranslation} {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrIndexingInProgress,
		domain.ErrDumpLimitExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// translationHandler reports which record lacks which locale.
func translationHandler(w http.ResponseWriter, err error, msg string) bool {
	var te *domain.TranslationError
	if !errors.As(err, &te) {
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"code":      ErrorCodeMissingTranslation,
		"message":   msg,
		"kind":      te.Kind,
		"source_id": te.SourceID,
		"locale":    te.Locale,
	})
	return true
}

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		translationHandler,
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrInvalidDataset, http.StatusBadRequest, ErrorCodeInvalidDataset),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrIndexingInProgress, http.StatusConflict, ErrorCodeIndexingInProgress),
		sentinelHandler(domain.ErrDumpLimitExceeded, http.StatusUnprocessableEntity, ErrorCodeDumpLimitExceeded),
	}
}
