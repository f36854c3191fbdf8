package indexing

import (
	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
)

// Documents are the flat records of one run.
type Documents struct {
	Facilities     []document.Facility
	Locations      []document.Location
	Categories     []document.Category
	CategoryGroups []document.CategoryGroup
	FacilityTypes  []document.FacilityType
	Ownerships     []document.Ownership
}

// Batch is the set of documents of one type.
type Batch struct {
	Type document.Type
	Docs []document.Doc
}

// Batches returns one batch per document type, in document.Types order.
func (d *Documents) Batches() []Batch {
	return []Batch{
		{document.TypeFacility, asDocs(d.Facilities)},
		{document.TypeLocation, asDocs(d.Locations)},
		{document.TypeCategory, asDocs(d.Categories)},
		{document.TypeCategoryGroup, asDocs(d.CategoryGroups)},
		{document.TypeFacilityType, asDocs(d.FacilityTypes)},
		{document.TypeOwnership, asDocs(d.Ownerships)},
	}
}

func asDocs[T document.Doc](items []T) []document.Doc {
	out := make([]document.Doc, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

type pairKey struct {
	facility, group int
}

type groupKey struct {
	facility, group int
	locale          string
}

type docBuilder struct {
	graph     *Graph
	locales   []string
	locations map[int]domain.Location
	types     map[int]domain.FacilityType
	// category ids and names per (facility, group[, locale]), built once
	categoryIDs   map[pairKey][]int
	categoryNames map[groupKey][]string
}

// BuildDocuments flattens g into index documents. It performs no I/O.
func BuildDocuments(g *Graph, locales []string) *Documents {
	b := &docBuilder{
		graph:         g,
		locales:       locales,
		locations:     make(map[int]domain.Location, len(g.Locations)),
		types:         make(map[int]domain.FacilityType, len(g.FacilityTypes)),
		categoryIDs:   make(map[pairKey][]int),
		categoryNames: make(map[groupKey][]string),
	}
	for _, l := range g.Locations {
		b.locations[l.ID] = l
	}
	for _, t := range g.FacilityTypes {
		b.types[t.ID] = t
	}
	b.indexCategories()

	d := &Documents{
		Facilities:     make([]document.Facility, 0, len(g.Facilities)),
		Locations:      make([]document.Location, 0, len(g.Locations)),
		Categories:     make([]document.Category, 0, len(g.Categories)),
		CategoryGroups: make([]document.CategoryGroup, 0, len(g.CategoryGroups)),
		FacilityTypes:  make([]document.FacilityType, 0, len(g.FacilityTypes)),
		Ownerships:     make([]document.Ownership, 0, len(g.Ownerships)),
	}

	locationCounts := make(map[int]int)
	for i := range g.Facilities {
		f := b.facility(&g.Facilities[i])
		for _, id := range f.AdmIDs {
			locationCounts[id]++
		}
		d.Facilities = append(d.Facilities, f)
	}

	for _, l := range g.Locations {
		doc := document.Location{
			ID:            l.ID,
			SourceID:      l.SourceID,
			Name:          l.Name,
			ParentID:      l.ParentID,
			Level:         l.Level,
			FacilityCount: locationCounts[l.ID],
		}
		if p, ok := b.locations[l.ParentID]; ok {
			doc.ParentName = p.Name
		}
		d.Locations = append(d.Locations, doc)
	}

	categoryCounts := make(map[int]int)
	for _, ids := range g.FacilityCategories {
		for _, id := range ids {
			categoryCounts[id]++
		}
	}
	for _, c := range g.Categories {
		d.Categories = append(d.Categories, document.Category{
			ID:              c.ID,
			SourceID:        c.SourceID,
			CategoryGroupID: c.GroupID,
			Names:           c.Names,
			FacilityCount:   categoryCounts[c.ID],
		})
	}

	for _, grp := range g.CategoryGroups {
		d.CategoryGroups = append(d.CategoryGroups, document.CategoryGroup{ID: grp.ID, SourceID: grp.SourceID, Names: grp.Names})
	}
	for _, t := range g.FacilityTypes {
		d.FacilityTypes = append(d.FacilityTypes, document.FacilityType{ID: t.ID, Name: t.Name, Priority: t.Priority})
	}
	for _, o := range g.Ownerships {
		d.Ownerships = append(d.Ownerships, document.Ownership{ID: o.ID, Name: o.Name})
	}
	return d
}

func (b *docBuilder) indexCategories() {
	categories := make(map[int]domain.Category, len(b.graph.Categories))
	for _, c := range b.graph.Categories {
		categories[c.ID] = c
	}
	for fid, ids := range b.graph.FacilityCategories {
		for _, cid := range ids {
			c := categories[cid]
			pk := pairKey{facility: fid, group: c.GroupID}
			b.categoryIDs[pk] = append(b.categoryIDs[pk], cid)
			for _, l := range b.locales {
				gk := groupKey{facility: fid, group: c.GroupID, locale: l}
				b.categoryNames[gk] = append(b.categoryNames[gk], c.Names[l])
			}
		}
	}
}

func (b *docBuilder) facility(f *domain.Facility) document.Facility {
	adm, admIDs := b.chain(f.LocationID)

	doc := document.Facility{
		ID:                f.ID,
		SourceID:          f.SourceID,
		Name:              f.Name,
		FacilityTypeID:    f.TypeID,
		FacilityType:      b.types[f.TypeID].Name,
		Address:           f.Address,
		ContactName:       f.ContactName,
		ContactEmail:      f.ContactEmail,
		ContactPhone:      f.ContactPhone,
		Position:          f.Position.EngineString(),
		Lat:               f.Position.Lat,
		Lng:               f.Position.Lng,
		Adm:               adm,
		AdmIDs:            admIDs,
		CategoryIDs:       orEmpty(b.graph.FacilityCategories[f.ID]),
		CategoriesByGroup: make(map[string][]document.GroupCategories, len(b.locales)),
		OpeningHours:      f.OpeningHours,
		Priority:          f.Priority,
		LastUpdated:       f.LastUpdated,
	}
	if f.OwnershipID > 0 {
		id := f.OwnershipID
		doc.OwnershipID, doc.Ownership = &id, f.Ownership
	}

	// every group is listed per locale, empty when the facility has none of its categories
	for _, l := range b.locales {
		groups := make([]document.GroupCategories, 0, len(b.graph.CategoryGroups))
		for _, grp := range b.graph.CategoryGroups {
			groups = append(groups, document.GroupCategories{
				CategoryGroupID: grp.ID,
				CategoryIDs:     orEmpty(b.categoryIDs[pairKey{facility: f.ID, group: grp.ID}]),
				Categories:      orEmpty(b.categoryNames[groupKey{facility: f.ID, group: grp.ID, locale: l}]),
			})
		}
		doc.CategoriesByGroup[l] = groups
	}
	return doc
}

// chain returns location names and ids from locationID up to the root.
func (b *docBuilder) chain(locationID int) ([]string, []int) {
	names, ids := []string{}, []int{}
	for id := locationID; id != 0; {
		l, ok := b.locations[id]
		if !ok {
			break
		}
		names = append(names, l.Name)
		ids = append(ids, l.ID)
		id = l.ParentID
	}
	return names, ids
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
