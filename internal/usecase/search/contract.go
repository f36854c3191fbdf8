package search

import (
	"context"

	"github.com/kailas-cloud/facilitydex/internal/db"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
)

// Repository defines the index contract for read operations.
type Repository interface {
	Query(ctx context.Context, t document.Type, q db.Query) ([]db.Hit, error)
	Get(ctx context.Context, t document.Type, id int) ([]byte, error)
}
