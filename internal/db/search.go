package db

import (
	"github.com/kailas-cloud/facilitydex/internal/domain/geo"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/filter"
)

// DistanceAttr is the computed attribute holding the distance in km from Query.Near.
const DistanceAttr = "distance"

// PhrasePrefix matches documents whose text field contains the phrase,
// with the last term treated as a prefix.
type PhrasePrefix struct {
	Field  string
	Phrase string
}

// Near computes DistanceAttr from the numeric Lat/Lng attributes to Point,
// as geo.PlaneDistanceKm does.
type Near struct {
	Lat   string
	Lng   string
	Point geo.Point
}

// SortKey orders hits by one attribute.
type SortKey struct {
	Attr string
	Desc bool
}

// Query is a structured filter/sort/page request against one FT index.
// Hits that tie on every SortKey come back in ascending key order.
type Query struct {
	Index   string
	Text    *PhrasePrefix
	Filters filter.Expression
	Near    *Near
	SortBy  []SortKey
	Offset  int
	Limit   int
}

// QueryResult is the output of a query, in sort order.
type QueryResult struct {
	Hits []Hit
}

// Hit is a single stored JSON document.
type Hit struct {
	Key      string
	Doc      []byte
	Distance *float64 // set when the query had Near
}
