package result

import (
	"fmt"

	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/geo"
)

// Facility is a facility hit with its position decoded into lat/lng.
type Facility struct {
	document.Facility
	Position geo.Point `json:"position"`
}

// FromDocument decodes the engine-native position of d.
func FromDocument(d document.Facility) (Facility, error) {
	pos, err := geo.ParseEngineString(d.Position)
	if err != nil {
		return Facility{}, fmt.Errorf("facility %d: %w", d.ID, err)
	}
	return Facility{Facility: d, Position: pos}, nil
}

// Summary is the compact projection returned by search listings.
type Summary struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Priority     int       `json:"priority"`
	FacilityType string    `json:"facility_type"`
	Position     geo.Point `json:"position"`
	Adm          []string  `json:"adm"`
}

// Summary projects f onto the listing fields.
func (f *Facility) Summary() Summary {
	return Summary{
		ID:           f.ID,
		Name:         f.Name,
		Priority:     f.Priority,
		FacilityType: f.FacilityType,
		Position:     f.Position,
		Adm:          f.Adm,
	}
}

// Page is one window of facility hits.
// NextFrom is set iff the page came back full; it does not prove more hits exist.
type Page struct {
	Items    []Facility
	From     int
	Size     int
	NextFrom *int
}

// NewPage builds a page and applies the full-page continuation rule.
func NewPage(items []Facility, from, size int) *Page {
	p := &Page{Items: items, From: from, Size: size}
	if len(items) == size {
		next := from + size
		p.NextFrom = &next
	}
	return p
}

// Category is a category rendered for one locale.
type Category struct {
	ID              int    `json:"id"`
	SourceID        string `json:"source_id"`
	CategoryGroupID int    `json:"category_group_id"`
	Name            string `json:"name"`
	FacilityCount   int    `json:"facility_count"`
}

// LocalizeCategory renders c in locale.
func LocalizeCategory(c document.Category, locale string) Category {
	return Category{
		ID:              c.ID,
		SourceID:        c.SourceID,
		CategoryGroupID: c.CategoryGroupID,
		Name:            c.Names[locale],
		FacilityCount:   c.FacilityCount,
	}
}

// Suggestions groups the three suggestion kinds.
type Suggestions struct {
	Facilities []Summary           `json:"facilities"`
	Categories []Category          `json:"categories"`
	Locations  []document.Location `json:"locations"`
}
