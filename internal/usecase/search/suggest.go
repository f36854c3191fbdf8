package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/facilitydex/internal/db"
	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/result"
)

// SuggestionLimits caps each suggestion kind.
type SuggestionLimits struct {
	Facilities int
	Categories int
	Locations  int
}

// DefaultSuggestionLimits returns 5 facilities, up to 1000 categories and 3 locations.
func DefaultSuggestionLimits() SuggestionLimits {
	return SuggestionLimits{Facilities: 5, Categories: 1000, Locations: 3}
}

// WithSuggestionLimits overrides the positive limits of l.
func (s *Service) WithSuggestionLimits(l SuggestionLimits) *Service {
	if l.Facilities > 0 {
		s.limits.Facilities = l.Facilities
	}
	if l.Categories > 0 {
		s.limits.Categories = l.Categories
	}
	if l.Locations > 0 {
		s.limits.Locations = l.Locations
	}
	return s
}

// Suggest returns facilities, categories and locations matching the request's
// query as a phrase prefix. Facility suggestions keep the request's filters
// and position; categories are matched on their name in locale.
func (s *Service) Suggest(ctx context.Context, req *request.Request, locale string) (*result.Suggestions, error) {
	if strings.TrimSpace(req.Query()) == "" {
		return nil, fmt.Errorf("%w: q is required", domain.ErrInvalidRequest)
	}

	facilityReq := req.WithPage(0, s.limits.Facilities)
	page, err := s.Search(ctx, &facilityReq)
	if err != nil {
		return nil, err
	}
	facilities := make([]result.Summary, len(page.Items))
	for i := range page.Items {
		facilities[i] = page.Items[i].Summary()
	}

	categories, err := s.SuggestCategories(ctx, req.Query(), locale)
	if err != nil {
		return nil, err
	}
	locations, err := s.SuggestLocations(ctx, req.Query())
	if err != nil {
		return nil, err
	}

	return &result.Suggestions{
		Facilities: facilities,
		Categories: categories,
		Locations:  locations,
	}, nil
}

// SuggestCategories matches category names in locale.
func (s *Service) SuggestCategories(ctx context.Context, query, locale string) ([]result.Category, error) {
	locale, err := s.locale(locale)
	if err != nil {
		return nil, err
	}
	field := document.LocalizedNameField(locale)
	docs, err := list[document.Category](ctx, s.repo, document.TypeCategory, db.Query{
		Text:   &db.PhrasePrefix{Field: field, Phrase: query},
		SortBy: []db.SortKey{{Attr: field}, {Attr: document.FieldID}},
		Limit:  s.limits.Categories,
	})
	if err != nil {
		return nil, err
	}
	return localize(docs, locale), nil
}

// SuggestLocations matches location names.
func (s *Service) SuggestLocations(ctx context.Context, query string) ([]document.Location, error) {
	return list[document.Location](ctx, s.repo, document.TypeLocation, db.Query{
		Text:   &db.PhrasePrefix{Field: document.FieldName, Phrase: query},
		SortBy: []db.SortKey{{Attr: document.FieldLevel}, {Attr: document.FieldName}, {Attr: document.FieldID}},
		Limit:  s.limits.Locations,
	})
}
