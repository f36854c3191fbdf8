package indexing

import (
	"context"

	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
)

// IndexWriter resets the index and writes the documents of a run.
type IndexWriter interface {
	DropIndex(ctx context.Context) error
	CreateIndex(ctx context.Context, meta domain.IndexMeta) error
	PutMapping(ctx context.Context, t document.Type) error
	BulkUpsert(ctx context.Context, t document.Type, docs []document.Doc) error
}
