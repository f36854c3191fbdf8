package db

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for database operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op constants map to Redis command names for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpAggregate   = "FT.AGGREGATE"
	OpJSONSet     = "JSON.SET"
	OpJSONGet     = "JSON.GET"
	OpDel         = "DEL"
	OpHGetAll     = "HGETALL"
	OpHSet        = "HSET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// BulkFailure is one rejected write of a pipelined batch.
type BulkFailure struct {
	Key string
	Err error
}

// BulkError reports the writes of a batch the engine rejected.
// Writes not listed in Failures were applied.
type BulkError struct {
	Op       string
	Total    int
	Failures []BulkFailure
}

func (e *BulkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d of %d writes failed", e.Op, len(e.Failures), e.Total)
	if len(e.Failures) > 0 {
		first := e.Failures[0]
		fmt.Fprintf(&b, " (first: key %s: %v)", first.Key, first.Err)
	}
	return b.String()
}

// Unwrap exposes every failure cause to errors.Is/As.
func (e *BulkError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}
