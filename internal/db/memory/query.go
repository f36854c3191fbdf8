package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/facilitydex/internal/db"
	"github.com/kailas-cloud/facilitydex/internal/domain/geo"
)

type row struct {
	key  string
	doc  []byte
	dist *float64
	sort []sortValue
}

type sortValue struct {
	present bool
	num     float64
	str     string
	numeric bool
}

// Query evaluates q against the documents under the index prefixes.
func (s *Store) Query(_ context.Context, q *db.Query) (*db.QueryResult, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must be non-negative")
	}

	s.mu.RLock()
	def, ok := s.indexes[q.Index]
	if !ok {
		s.mu.RUnlock()
		return nil, db.ErrIndexNotFound
	}
	keys := make([]string, 0, len(s.docs))
	for key := range s.docs {
		if hasAnyPrefix(key, def.Prefixes) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	docs := make([][]byte, len(keys))
	for i, key := range keys {
		docs[i] = s.docs[key]
	}
	s.mu.RUnlock()

	var phrase []string
	if q.Text != nil {
		if _, ok := def.Field(q.Text.Field); !ok {
			return nil, fmt.Errorf("unknown text field %q", q.Text.Field)
		}
		phrase = tokenize(q.Text.Phrase)
	}

	rows := make([]row, 0, len(keys))
	for i, key := range keys {
		var parsed any
		if err := json.Unmarshal(docs[i], &parsed); err != nil {
			continue
		}
		attr := func(name string) []any {
			f, ok := def.Field(name)
			if !ok {
				return nil
			}
			return resolvePath(parsed, f.Name)
		}

		if len(phrase) > 0 && !matchesPhrasePrefix(attr(q.Text.Field), phrase) {
			continue
		}
		if !matchesFilters(q, attr) {
			continue
		}

		r := row{key: key, doc: docs[i]}
		if q.Near != nil {
			r.dist = distanceTo(attr(q.Near.Lat), attr(q.Near.Lng), q.Near.Point)
		}
		for _, k := range q.SortBy {
			if k.Attr == db.DistanceAttr {
				if q.Near == nil {
					return nil, fmt.Errorf("sort by %s requires a reference point", db.DistanceAttr)
				}
				r.sort = append(r.sort, distanceSortValue(r.dist))
				continue
			}
			r.sort = append(r.sort, toSortValue(attr(k.Attr)))
		}
		rows = append(rows, r)
	}

	slices.SortStableFunc(rows, func(a, b row) int {
		for i, k := range q.SortBy {
			if c := compareSortValues(a.sort[i], b.sort[i], k.Desc); c != 0 {
				return c
			}
		}
		return strings.Compare(a.key, b.key)
	})

	if q.Offset >= len(rows) {
		return &db.QueryResult{}, nil
	}
	rows = rows[q.Offset:min(len(rows), q.Offset+q.Limit)]

	hits := make([]db.Hit, len(rows))
	for i, r := range rows {
		hits[i] = db.Hit{Key: r.key, Doc: slices.Clone(r.doc), Distance: r.dist}
	}
	return &db.QueryResult{Hits: hits}, nil
}

func matchesFilters(q *db.Query, attr func(string) []any) bool {
	for _, cond := range q.Filters.Must() {
		values := attr(cond.Key())
		nums := make([]float64, 0, len(values))
		for _, v := range values {
			if f, err := cast.ToFloat64E(v); err == nil {
				nums = append(nums, f)
			}
		}
		if !cond.Holds(nums...) {
			return false
		}
	}
	return true
}

// matchesPhrasePrefix reports whether any value contains phrase as
// consecutive terms, the last one matched as a prefix.
func matchesPhrasePrefix(values []any, phrase []string) bool {
	last := len(phrase) - 1
	for _, v := range values {
		terms := tokenize(cast.ToString(v))
		for start := 0; start+last < len(terms); start++ {
			ok := true
			for j := 0; j < last; j++ {
				if terms[start+j] != phrase[j] {
					ok = false
					break
				}
			}
			if ok && strings.HasPrefix(terms[start+last], phrase[last]) {
				return true
			}
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func distanceTo(lats, lngs []any, origin geo.Point) *float64 {
	if len(lats) == 0 || len(lngs) == 0 {
		return nil
	}
	lat, err := cast.ToFloat64E(lats[0])
	if err != nil {
		return nil
	}
	lng, err := cast.ToFloat64E(lngs[0])
	if err != nil {
		return nil
	}
	d := geo.PlaneDistanceKm(origin, geo.Point{Lat: lat, Lng: lng})
	return &d
}

func distanceSortValue(d *float64) sortValue {
	if d == nil {
		return sortValue{}
	}
	return sortValue{present: true, numeric: true, num: *d}
}

func toSortValue(values []any) sortValue {
	if len(values) == 0 {
		return sortValue{}
	}
	switch v := values[0].(type) {
	case float64:
		return sortValue{present: true, numeric: true, num: v}
	case string:
		return sortValue{present: true, str: strings.ToLower(v)}
	default:
		return sortValue{present: true, str: cast.ToString(v)}
	}
}

// compareSortValues orders present values before missing ones in either direction.
func compareSortValues(a, b sortValue, desc bool) int {
	switch {
	case !a.present && !b.present:
		return 0
	case !a.present:
		return 1
	case !b.present:
		return -1
	}
	var c int
	if a.numeric && b.numeric {
		c = cmp.Compare(a.num, b.num)
	} else {
		c = strings.Compare(a.str, b.str)
	}
	if desc {
		return -c
	}
	return c
}

// resolvePath walks a "$.a.b" or "$.a[*]" path through decoded JSON.
func resolvePath(doc any, path string) []any {
	p := strings.TrimPrefix(strings.TrimPrefix(path, "$"), ".")
	cur := []any{doc}
	if p == "" {
		return cur
	}
	for _, seg := range strings.Split(p, ".") {
		wildcard := strings.HasSuffix(seg, "[*]")
		seg = strings.TrimSuffix(seg, "[*]")

		var next []any
		for _, c := range cur {
			m, ok := c.(map[string]any)
			if !ok {
				continue
			}
			v, ok := m[seg]
			if !ok || v == nil {
				continue
			}
			if wildcard {
				if arr, ok := v.([]any); ok {
					next = append(next, arr...)
				}
				continue
			}
			next = append(next, v)
		}
		cur = next
	}
	return cur
}
