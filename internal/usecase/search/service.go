// Package search serves facility search, lookups, listings and suggestions
// over the facility index.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/kailas-cloud/facilitydex/internal/db"
	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/filter"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/order"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/result"
)

// ListLimit bounds reference listings (types, ownerships, locations, categories).
const ListLimit = 10000

// Service executes read queries against the index.
type Service struct {
	repo    Repository
	locales []string
	limits  SuggestionLimits
}

// New creates a search service. locales[0] is the default locale.
func New(repo Repository, locales []string) *Service {
	return &Service{repo: repo, locales: locales, limits: DefaultSuggestionLimits()}
}

// Locales returns the configured locales.
func (s *Service) Locales() []string { return s.locales }

// Search runs a facility search and returns one page.
// NextFrom is set when the page came back full.
func (s *Service) Search(ctx context.Context, req *request.Request) (*result.Page, error) {
	hits, err := s.repo.Query(ctx, document.TypeFacility, facilityQuery(req))
	if err != nil {
		return nil, fmt.Errorf("search facilities: %w", err)
	}
	docs, err := decode[document.Facility](hits)
	if err != nil {
		return nil, err
	}

	items := make([]result.Facility, 0, len(docs))
	for _, d := range docs {
		f, err := result.FromDocument(d)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return result.NewPage(items, req.From(), req.Size()), nil
}

// facilityQuery maps a request onto the index query. With a known position
// the default order is ascending distance; facility id breaks every tie.
func facilityQuery(req *request.Request) db.Query {
	q := db.Query{
		Filters: req.Filters(),
		Offset:  req.From(),
		Limit:   req.Size(),
	}
	if text := req.Query(); text != "" {
		q.Text = &db.PhrasePrefix{Field: document.FieldName, Phrase: text}
	}
	if p := req.Position(); p != nil {
		q.Near = &db.Near{Lat: document.FieldLat, Lng: document.FieldLng, Point: *p}
	}

	byDistance := db.SortKey{Attr: db.DistanceAttr}
	switch req.OrderBy() {
	case order.Default, order.Distance:
		if q.Near != nil {
			q.SortBy = append(q.SortBy, byDistance)
		}
	case order.Type:
		q.SortBy = append(q.SortBy, db.SortKey{Attr: document.FieldPriority, Desc: true})
		if q.Near != nil {
			q.SortBy = append(q.SortBy, byDistance)
		}
	case order.Name:
		q.SortBy = append(q.SortBy, db.SortKey{Attr: document.FieldName})
	}
	q.SortBy = append(q.SortBy, db.SortKey{Attr: document.FieldID})
	return q
}

// GetFacility returns a single facility by surrogate id.
func (s *Service) GetFacility(ctx context.Context, id int) (result.Facility, error) {
	if id <= 0 {
		return result.Facility{}, domain.ErrNotFound
	}
	data, err := s.repo.Get(ctx, document.TypeFacility, id)
	if err != nil {
		return result.Facility{}, fmt.Errorf("get facility %d: %w", id, err)
	}
	var d document.Facility
	if err := json.Unmarshal(data, &d); err != nil {
		return result.Facility{}, fmt.Errorf("decode facility %d: %w", id, err)
	}
	return result.FromDocument(d)
}

// FacilityTypes lists facility types, highest priority first.
func (s *Service) FacilityTypes(ctx context.Context) ([]document.FacilityType, error) {
	return list[document.FacilityType](ctx, s.repo, document.TypeFacilityType, db.Query{
		SortBy: []db.SortKey{{Attr: document.FieldPriority, Desc: true}, {Attr: document.FieldID}},
	})
}

// Ownerships lists ownerships in id order.
func (s *Service) Ownerships(ctx context.Context) ([]document.Ownership, error) {
	return list[document.Ownership](ctx, s.repo, document.TypeOwnership, db.Query{
		SortBy: []db.SortKey{{Attr: document.FieldID}},
	})
}

// CategoryGroups lists category groups in id order.
func (s *Service) CategoryGroups(ctx context.Context) ([]document.CategoryGroup, error) {
	return list[document.CategoryGroup](ctx, s.repo, document.TypeCategoryGroup, db.Query{
		SortBy: []db.SortKey{{Attr: document.FieldID}},
	})
}

// Categories lists categories rendered in locale, optionally within one group.
func (s *Service) Categories(ctx context.Context, locale string, groupID int) ([]result.Category, error) {
	locale, err := s.locale(locale)
	if err != nil {
		return nil, err
	}
	q := db.Query{SortBy: []db.SortKey{{Attr: document.FieldID}}}
	if groupID > 0 {
		if q.Filters, err = equals(document.FieldGroupID, groupID); err != nil {
			return nil, err
		}
	}
	docs, err := list[document.Category](ctx, s.repo, document.TypeCategory, q)
	if err != nil {
		return nil, err
	}
	return localize(docs, locale), nil
}

// LocationFilter narrows location listings. Zero values mean no filter.
type LocationFilter struct {
	Level    int
	ParentID int
}

// Locations lists locations by level, then name.
func (s *Service) Locations(ctx context.Context, f LocationFilter) ([]document.Location, error) {
	var conds []filter.Condition
	if f.Level > 0 {
		c, err := filter.NewEqual(document.FieldLevel, f.Level)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	if f.ParentID > 0 {
		c, err := filter.NewEqual(document.FieldParentID, f.ParentID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	expr, err := filter.NewExpression(conds...)
	if err != nil {
		return nil, err
	}
	return list[document.Location](ctx, s.repo, document.TypeLocation, db.Query{
		Filters: expr,
		SortBy:  []db.SortKey{{Attr: document.FieldLevel}, {Attr: document.FieldName}, {Attr: document.FieldID}},
	})
}

// AdministrativeDepth returns the deepest location level in the index, 0 when empty.
func (s *Service) AdministrativeDepth(ctx context.Context) (int, error) {
	hits, err := s.repo.Query(ctx, document.TypeLocation, db.Query{
		SortBy: []db.SortKey{{Attr: document.FieldLevel, Desc: true}, {Attr: document.FieldID}},
		Limit:  1,
	})
	if err != nil {
		return 0, fmt.Errorf("administrative depth: %w", err)
	}
	locs, err := decode[document.Location](hits)
	if err != nil || len(locs) == 0 {
		return 0, err
	}
	return locs[0].Level, nil
}

func (s *Service) locale(l string) (string, error) {
	if l == "" && len(s.locales) > 0 {
		return s.locales[0], nil
	}
	if !slices.Contains(s.locales, l) {
		return "", fmt.Errorf("%w: unsupported locale %q", domain.ErrInvalidRequest, l)
	}
	return l, nil
}

func list[T any](ctx context.Context, repo Repository, t document.Type, q db.Query) ([]T, error) {
	if q.Limit == 0 {
		q.Limit = ListLimit
	}
	hits, err := repo.Query(ctx, t, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t, err)
	}
	return decode[T](hits)
}

func decode[T any](hits []db.Hit) ([]T, error) {
	out := make([]T, len(hits))
	for i, h := range hits {
		if err := json.Unmarshal(h.Doc, &out[i]); err != nil {
			return nil, fmt.Errorf("decode %s: %w", h.Key, err)
		}
	}
	return out, nil
}

func equals(field string, v int) (filter.Expression, error) {
	c, err := filter.NewEqual(field, v)
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.NewExpression(c)
}

func localize(docs []document.Category, locale string) []result.Category {
	out := make([]result.Category, len(docs))
	for i, d := range docs {
		out[i] = result.LocalizeCategory(d, locale)
	}
	return out
}
