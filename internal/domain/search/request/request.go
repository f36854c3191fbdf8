package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/geo"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/filter"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/order"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed free-text query length.
	MaxQueryLength = 256
	// DefaultSize applies when size is absent or zero.
	DefaultSize = 1000
)

// Params are the raw facility search parameters. Zero ids mean "no filter".
type Params struct {
	Query        string
	Category     int
	FacilityType int
	Location     int
	Ownership    int
	Lat          *float64
	Lng          *float64
	Sort         string
	From         int
	Size         int
}

// Request is a validated facility search.
type Request struct {
	query    string
	filters  filter.Expression
	position *geo.Point
	orderBy  order.By
	from     int
	size     int
}

// New validates and normalizes search parameters.
// Defaults: from=0, size=DefaultSize. A position is used only when both lat and lng are given.
func New(p Params) (Request, error) {
	q := strings.TrimSpace(p.Query)
	if len(q) > MaxQueryLength {
		return Request{}, invalid("query too long (max %d chars)", MaxQueryLength)
	}
	if p.From < 0 {
		return Request{}, invalid("from must be non-negative, got %d", p.From)
	}
	if p.Size < 0 {
		return Request{}, invalid("size must be non-negative, got %d", p.Size)
	}
	size := p.Size
	if size == 0 {
		size = DefaultSize
	}

	filters, err := buildFilters(p)
	if err != nil {
		return Request{}, err
	}

	var pos *geo.Point
	if p.Lat != nil && p.Lng != nil {
		pt := geo.Point{Lat: *p.Lat, Lng: *p.Lng}
		if !pt.Valid() {
			return Request{}, invalid("lat/lng out of range: %v,%v", pt.Lat, pt.Lng)
		}
		pos = &pt
	}

	by := order.By(p.Sort)
	if !by.IsValid() {
		return Request{}, invalid("unsupported sort %q", p.Sort)
	}
	if by == order.Distance && pos == nil {
		return Request{}, invalid("sort=distance requires lat and lng")
	}

	return Request{
		query:    q,
		filters:  filters,
		position: pos,
		orderBy:  by,
		from:     p.From,
		size:     size,
	}, nil
}

func buildFilters(p Params) (filter.Expression, error) {
	ids := []struct {
		field string
		param string
		value int
	}{
		{document.FieldCategoryIDs, "s", p.Category},
		{document.FieldFacilityTypeID, "t", p.FacilityType},
		{document.FieldAdmIDs, "l", p.Location},
		{document.FieldOwnershipID, "o", p.Ownership},
	}

	var must []filter.Condition
	for _, id := range ids {
		if id.value < 0 {
			return filter.Expression{}, invalid("%s must be a positive id, got %d", id.param, id.value)
		}
		if id.value == 0 {
			continue
		}
		cond, err := filter.NewEqual(id.field, id.value)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("filter %s: %w", id.param, err)
		}
		must = append(must, cond)
	}
	return filter.NewExpression(must...)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// WithPage returns a copy of r with the given pagination window.
func (r Request) WithPage(from, size int) Request {
	r.from = from
	r.size = size
	return r
}

// Query returns the free-text phrase-prefix query.
func (r *Request) Query() string { return r.query }

// Filters returns the id filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// Position returns the caller position (nil when unknown).
func (r *Request) Position() *geo.Point { return r.position }

// OrderBy returns the requested ordering.
func (r *Request) OrderBy() order.By { return r.orderBy }

// From returns the page offset.
func (r *Request) From() int { return r.from }

// Size returns the page size.
func (r *Request) Size() int { return r.size }
