package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals malformed search or export parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidDataset signals a dataset that cannot be decoded.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrMissingTranslation aborts an indexing run before the index is touched.
	ErrMissingTranslation = errors.New("missing translation")
	// ErrIndexingInProgress signals a concurrent indexing run.
	ErrIndexingInProgress = errors.New("indexing already in progress")
	// ErrDumpLimitExceeded signals that an export hit its row bound.
	ErrDumpLimitExceeded = errors.New("dump row limit exceeded")
)

// TranslationError wraps ErrMissingTranslation with the offending record.
type TranslationError struct {
	Kind     string // category or category_group
	SourceID string
	Locale   string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("%s: %s %q has no name for locale %q", ErrMissingTranslation.Error(), e.Kind, e.SourceID, e.Locale)
}

func (e *TranslationError) Unwrap() error { return ErrMissingTranslation }

// NewMissingTranslation creates a translation-completeness error.
func NewMissingTranslation(kind, sourceID, locale string) error {
	return &TranslationError{Kind: kind, SourceID: sourceID, Locale: locale}
}
