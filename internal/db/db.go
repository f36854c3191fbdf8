// Package db defines the search engine contract the facility index is built
// on. The redis package talks to Redis 8; memory evaluates the same queries
// in process.
package db

import (
	"context"
	"time"
)

// Store is everything an engine provides. Consumers declare the narrow
// subset they use.
//
//nolint:interfacebloat // engine facade; consumers depend on sub-interfaces
type Store interface {
	Pinger
	MetaStore
	DocumentStore
	IndexManager
	Querier
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MetaStore keeps flat string records such as the index run metadata.
type MetaStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

// JSONSetItem is one document write of a bulk upsert. An empty Path means
// the document root.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// DocumentStore writes and reads JSON documents by key.
type DocumentStore interface {
	// JSONSetMulti pipelines the writes; rejected ones come back as *BulkError.
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
}

// IndexManager creates and drops the per-type secondary indexes.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	// DropIndex removes the index; with deleteDocs the indexed documents go too.
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Querier runs filter/sort/window queries against one index.
type Querier interface {
	Query(ctx context.Context, q *Query) (*QueryResult, error)
}
