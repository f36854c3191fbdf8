package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/facilitydex/internal/db"
)

// CreateIndex runs FT.CREATE for def. Facility names mix scripts and carry
// ordinals like "1st", so indexes are created without stopwords and text
// fields without stemming: phrase prefixes then match the stored words.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "index already exists"):
		return db.ErrIndexExists
	default:
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
}

// DropIndex runs FT.DROPINDEX; with deleteDocs the documents under the
// index prefixes are removed too (DD).
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(name)
	if deleteDocs {
		cmd = cmd.Args("DD")
	}
	err := s.do(ctx, cmd.Build()).Error()
	switch {
	case err == nil:
		return nil
	case isUnknownIndex(err):
		return db.ErrIndexNotFound
	default:
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
}

// IndexExists reports whether FT.INFO knows name.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isUnknownIndex(err):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
}

// Redis 8 reports "Unknown index name", Redis Stack 7.x "Unknown Index name" or "no such index".
func isUnknownIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index")
}

func buildCreateArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("index %q: %w", def.Name, err)
	}

	args := []string{def.Name, "ON", "JSON"}
	if len(def.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(def.Prefixes)))
		args = append(args, def.Prefixes...)
	}
	args = append(args, "STOPWORDS", "0", "SCHEMA")

	for i := range def.Fields {
		field, err := buildFieldArgs(&def.Fields[i])
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", def.Name, err)
		}
		args = append(args, field...)
	}
	return args, nil
}

var fieldTypes = map[db.IndexFieldType]string{
	db.IndexFieldNumeric: "NUMERIC",
	db.IndexFieldText:    "TEXT",
	db.IndexFieldGeo:     "GEO",
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}
	typ, ok := fieldTypes[f.Type]
	if !ok {
		return nil, fmt.Errorf("field %s: unknown type %d", f.Name, f.Type)
	}

	args := []string{f.Name}
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}
	args = append(args, typ)
	if f.Type == db.IndexFieldText {
		args = append(args, "NOSTEM")
	}
	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	return args, nil
}
