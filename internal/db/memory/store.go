// Package memory is an in-process db.Store evaluating the same structured
// queries as the Redis driver. It backs local runs and end-to-end tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/facilitydex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store keeps JSON documents, hashes and index definitions in memory.
type Store struct {
	mu      sync.RWMutex
	docs    map[string][]byte
	hashes  map[string]map[string]string
	indexes map[string]*db.IndexDefinition
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		docs:    make(map[string][]byte),
		hashes:  make(map[string]map[string]string),
		indexes: make(map[string]*db.IndexDefinition),
	}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// HSet sets hash fields.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	maps.Copy(h, fields)
	return nil
}

// HGetAll returns a copy of a hash.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return maps.Clone(h), nil
}

// Del removes a key of any kind.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.hashes, key)
	delete(s.docs, key)
	return nil
}

// JSONSetMulti stores whole documents; only the root path is supported.
func (s *Store) JSONSetMulti(_ context.Context, items []db.JSONSetItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var failures []db.BulkFailure
	for _, item := range items {
		if item.Path != "" && item.Path != "$" {
			failures = append(failures, db.BulkFailure{Key: item.Key, Err: fmt.Errorf("unsupported path %q", item.Path)})
			continue
		}
		if !json.Valid(item.Data) {
			failures = append(failures, db.BulkFailure{Key: item.Key, Err: fmt.Errorf("invalid JSON")})
			continue
		}
		s.docs[item.Key] = slices.Clone(item.Data)
	}
	if len(failures) > 0 {
		return &db.BulkError{Op: db.OpJSONSet, Total: len(items), Failures: failures}
	}
	return nil
}

// JSONGet returns a stored document.
func (s *Store) JSONGet(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return slices.Clone(doc), nil
}

// CreateIndex registers a JSON index definition.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	clone := *def
	clone.Prefixes = slices.Clone(def.Prefixes)
	clone.Fields = slices.Clone(def.Fields)
	s.indexes[def.Name] = &clone
	return nil
}

// DropIndex removes an index and optionally the documents under its prefixes.
func (s *Store) DropIndex(_ context.Context, name string, deleteDocs bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.indexes[name]
	if !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)

	if deleteDocs {
		for key := range s.docs {
			if hasAnyPrefix(key, def.Prefixes) {
				delete(s.docs, key)
			}
		}
	}
	return nil
}

// IndexExists reports whether the index is registered.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.indexes[name]
	return ok, nil
}

func hasAnyPrefix(key string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
