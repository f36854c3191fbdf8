package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/facilitydex/internal/db"
	"github.com/kailas-cloud/facilitydex/internal/domain/geo"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/filter"
)

const (
	keyAttr = "__key"
	docAttr = "$"
)

// Query runs a structured query via FT.AGGREGATE.
//
//	FT.AGGREGATE idx <query> LOAD n @__key $ [@lat @lng] [@sort attrs...]
//	  [APPLY sqrt(dx*dx+dy*dy) AS distance]
//	  SORTBY 2m @attr ASC|DESC ... @__key ASC LIMIT off num DIALECT 2
func (s *Store) Query(ctx context.Context, q *db.Query) (*db.QueryResult, error) {
	args, err := buildAggregateArgs(q)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseAggregateResult(raw)
}

func buildAggregateArgs(q *db.Query) ([]string, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must be non-negative")
	}

	args := []string{q.Index, buildQueryString(q)}

	load := []string{"@" + keyAttr, docAttr}
	loaded := map[string]bool{}
	addLoad := func(attr string) {
		if attr == db.DistanceAttr || loaded[attr] {
			return
		}
		loaded[attr] = true
		load = append(load, "@"+attr)
	}
	if q.Near != nil {
		addLoad(q.Near.Lat)
		addLoad(q.Near.Lng)
	}
	for _, k := range q.SortBy {
		addLoad(k.Attr)
	}
	args = append(args, "LOAD", strconv.Itoa(len(load)))
	args = append(args, load...)

	if q.Near != nil {
		args = append(args, "APPLY", buildDistanceExpr(q.Near), "AS", db.DistanceAttr)
	}

	sortArgs := make([]string, 0, 2*len(q.SortBy)+2)
	for _, k := range q.SortBy {
		if k.Attr == db.DistanceAttr && q.Near == nil {
			return nil, fmt.Errorf("sort by %s requires a reference point", db.DistanceAttr)
		}
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		sortArgs = append(sortArgs, "@"+k.Attr, dir)
	}
	sortArgs = append(sortArgs, "@"+keyAttr, "ASC")
	args = append(args, "SORTBY", strconv.Itoa(len(sortArgs)))
	args = append(args, sortArgs...)

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)
	return args, nil
}

// buildDistanceExpr renders geo.PlaneDistanceKm as an APPLY expression.
// The projection is centered on the reference point, so both per-degree
// scales are constants.
func buildDistanceExpr(n *db.Near) string {
	kx, ky := geo.KmPerDegree(n.Point)
	dx := scaledOffset(n.Lng, n.Point.Lng, kx)
	dy := scaledOffset(n.Lat, n.Point.Lat, ky)
	return fmt.Sprintf("sqrt(%s*%s+%s*%s)", dx, dx, dy, dy)
}

// scaledOffset renders "((@attr-origin)*scale)" with no negative literals.
func scaledOffset(attr string, origin, scale float64) string {
	op := "-"
	if origin < 0 {
		op, origin = "+", -origin
	}
	return fmt.Sprintf("((@%s%s%s)*%s)", attr, op, formatFloat(origin), formatFloat(scale))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func buildQueryString(q *db.Query) string {
	var parts []string
	if q.Text != nil {
		if text := buildPhrasePrefix(q.Text); text != "" {
			parts = append(parts, text)
		}
	}
	if f := buildFilter(q.Filters); f != "" {
		parts = append(parts, f)
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// buildPhrasePrefix renders "(@field:(t1 t2 t3*) => { $slop: 0; $inorder: true; })":
// consecutive terms in order, the last one a prefix. Single-character prefixes
// rely on MINPREFIX 1, set by WaitForReady.
func buildPhrasePrefix(p *db.PhrasePrefix) string {
	terms := strings.FieldsFunc(p.Phrase, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(terms) == 0 {
		return ""
	}
	escaped := make([]string, len(terms))
	for i, t := range terms {
		escaped[i] = escapeQuery(strings.ToLower(t))
	}
	escaped[len(escaped)-1] += "*"
	return fmt.Sprintf("(@%s:(%s) => { $slop: 0; $inorder: true; })",
		p.Field, strings.Join(escaped, " "))
}

// --- Result parsing ---

func parseAggregateResult(raw []rueidis.RedisMessage) (*db.QueryResult, error) {
	if len(raw) == 0 {
		return &db.QueryResult{}, nil
	}

	// [total, row1, row2, ...], each row a flat [name, value, ...] array
	hits := make([]db.Hit, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(row)

		doc, ok := fields[docAttr]
		if !ok {
			continue
		}
		body, err := unwrapJSONPath([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}

		hit := db.Hit{Key: fields[keyAttr], Doc: body}
		if d, ok := fields[db.DistanceAttr]; ok {
			if v, err := strconv.ParseFloat(d, 64); err == nil {
				hit.Distance = &v
			}
		}
		hits = append(hits, hit)
	}

	return &db.QueryResult{Hits: hits}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter translates filter.Expression into conjunctive numeric clauses.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(expr.Must()))
	for _, cond := range expr.Must() {
		parts = append(parts, buildNumericFilter(cond.Key(), cond.Range()))
	}
	return strings.Join(parts, " ")
}

func buildNumericFilter(key string, r filter.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.GT() != nil {
		minBound = fmt.Sprintf("(%g", *r.GT())
	} else if r.GTE() != nil {
		minBound = fmt.Sprintf("%g", *r.GTE())
	}

	if r.LT() != nil {
		maxBound = fmt.Sprintf("(%g", *r.LT())
	} else if r.LTE() != nil {
		maxBound = fmt.Sprintf("%g", *r.LTE())
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

// --- Query helpers ---

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
