package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/facilitydex/internal/db"
)

// JSONSetMulti stores multiple JSON documents in a single DoMulti round-trip.
// Rejected writes are collected into a *db.BulkError; the rest stay applied.
func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		path := item.Path
		if path == "" {
			path = "$"
		}
		cmds[i] = s.b().Arbitrary("JSON.SET").Keys(item.Key).Args(path, string(item.Data)).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)

	var failures []db.BulkFailure
	for i, res := range results {
		if err := res.Error(); err != nil {
			failures = append(failures, db.BulkFailure{Key: items[i].Key, Err: err})
		}
	}
	if len(failures) > 0 {
		return &db.BulkError{Op: db.OpJSONSet, Total: len(items), Failures: failures}
	}
	return nil
}

// JSONGet retrieves a whole JSON document by key.
func (s *Store) JSONGet(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Arbitrary("JSON.GET").Keys(key).Args("$").Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	return unwrapJSONPath([]byte(raw))
}

// unwrapJSONPath strips the array wrapper added by "$" path queries.
func unwrapJSONPath(raw []byte) ([]byte, error) {
	if len(raw) == 0 || raw[0] != '[' {
		return raw, nil
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	if len(docs) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return docs[0], nil
}
