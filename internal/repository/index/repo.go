// Package index adapts a db.Store into the per-type facility index: index
// lifecycle, mappings, bulk upserts and structured queries.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/facilitydex/internal/db"
	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
)

// DefaultNamespace prefixes every key and index name.
const DefaultNamespace = "fdx"

// store is the consumer interface for the index (ISP).
//
//nolint:interfacebloat // index repo owns hash metadata, documents and FT lifecycle
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Query(ctx context.Context, q *db.Query) (*db.QueryResult, error)
}

// Repo implements the index client used by indexing, search and dump.
type Repo struct {
	store     store
	namespace string
	locales   []string
}

// New creates an index repository. An empty namespace falls back to DefaultNamespace.
func New(s store, namespace string, locales []string) *Repo {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Repo{store: s, namespace: namespace, locales: locales}
}

// Locales returns the configured locales.
func (r *Repo) Locales() []string { return r.locales }

// CreateIndex records run metadata. It fails with db.ErrIndexExists when the
// index has not been dropped since the previous run.
func (r *Repo) CreateIndex(ctx context.Context, meta domain.IndexMeta) error {
	_, err := r.store.HGetAll(ctx, r.metaKey())
	switch {
	case err == nil:
		return db.ErrIndexExists
	case !errors.Is(err, db.ErrKeyNotFound):
		return fmt.Errorf("read index meta: %w", err)
	}

	if err := r.store.HSet(ctx, r.metaKey(), metaToHash(meta)); err != nil {
		return fmt.Errorf("write index meta: %w", err)
	}
	return nil
}

// DropIndex removes every per-type index with its documents, then the metadata.
// Missing indexes are skipped.
func (r *Repo) DropIndex(ctx context.Context) error {
	for _, t := range document.Types() {
		err := r.store.DropIndex(ctx, r.indexName(t), true)
		if err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop %s index: %w", t, err)
		}
	}
	if err := r.store.Del(ctx, r.metaKey()); err != nil {
		return fmt.Errorf("delete index meta: %w", err)
	}
	return nil
}

// Meta returns the metadata of the current index.
func (r *Repo) Meta(ctx context.Context) (domain.IndexMeta, error) {
	m, err := r.store.HGetAll(ctx, r.metaKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.IndexMeta{}, domain.ErrNotFound
		}
		return domain.IndexMeta{}, fmt.Errorf("read index meta: %w", err)
	}
	return metaFromHash(m)
}

// Exists reports whether the facility index is present.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	return r.store.IndexExists(ctx, r.indexName(document.TypeFacility))
}

// PutMapping declares the field types of one document type from its Schema.
func (r *Repo) PutMapping(ctx context.Context, t document.Type) error {
	def, err := r.Schema(t)
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("put mapping %s: %w", t, err)
	}
	return nil
}

// BulkUpsert writes docs of type t in one pipelined round trip.
// Per-document failures come back as *db.BulkError.
func (r *Repo) BulkUpsert(ctx context.Context, t document.Type, docs []document.Doc) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.JSONSetItem, len(docs))
	for i, d := range docs {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal %s %d: %w", t, d.DocID(), err)
		}
		items[i] = db.JSONSetItem{Key: r.key(t, d.DocID()), Data: data}
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("bulk upsert %s: %w", t, err)
	}
	return nil
}

// Query runs q against the index of type t. q.Index is set by the repository.
func (r *Repo) Query(ctx context.Context, t document.Type, q db.Query) ([]db.Hit, error) {
	q.Index = r.indexName(t)
	res, err := r.store.Query(ctx, &q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t, err)
	}
	return res.Hits, nil
}

// Get returns the stored document of type t with the given id.
func (r *Repo) Get(ctx context.Context, t document.Type, id int) ([]byte, error) {
	data, err := r.store.JSONGet(ctx, r.key(t, id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get %s %d: %w", t, id, err)
	}
	return data, nil
}

// Decode unmarshals hit documents into T, preserving order.
func Decode[T any](hits []db.Hit) ([]T, error) {
	out := make([]T, len(hits))
	for i, h := range hits {
		if err := json.Unmarshal(h.Doc, &out[i]); err != nil {
			return nil, fmt.Errorf("decode %s: %w", h.Key, err)
		}
	}
	return out, nil
}

// Key patterns: fdx:meta, fdx:{type} (FT index), fdx:{type}:{id}

func (r *Repo) metaKey() string {
	return r.namespace + ":meta"
}

func (r *Repo) indexName(t document.Type) string {
	return r.namespace + ":" + string(t)
}

func (r *Repo) prefix(t document.Type) string {
	return r.indexName(t) + ":"
}

func (r *Repo) key(t document.Type, id int) string {
	return r.prefix(t) + strconv.Itoa(id)
}

func metaToHash(m domain.IndexMeta) map[string]string {
	return map[string]string{
		"run_id":               m.RunID,
		"created_at":           strconv.FormatInt(m.CreatedAt.UnixMilli(), 10),
		"locales":              strings.Join(m.Locales, ","),
		"administrative_depth": strconv.Itoa(m.AdministrativeDepth),
	}
}

func metaFromHash(h map[string]string) (domain.IndexMeta, error) {
	createdAt, err := strconv.ParseInt(h["created_at"], 10, 64)
	if err != nil {
		return domain.IndexMeta{}, fmt.Errorf("invalid created_at: %w", err)
	}
	depth, err := strconv.Atoi(h["administrative_depth"])
	if err != nil {
		return domain.IndexMeta{}, fmt.Errorf("invalid administrative_depth: %w", err)
	}

	var locales []string
	if s := h["locales"]; s != "" {
		locales = strings.Split(s, ",")
	}
	return domain.IndexMeta{
		RunID:               h["run_id"],
		CreatedAt:           time.UnixMilli(createdAt).UTC(),
		Locales:             locales,
		AdministrativeDepth: depth,
	}, nil
}
