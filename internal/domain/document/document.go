// Package document defines the flat, self-contained records stored in the
// index, one shape per document type.
package document

import "strconv"

// Type names a document family; each family lives in its own index.
type Type string

// Document types.
const (
	TypeFacility      Type = "facility"
	TypeLocation      Type = "location"
	TypeCategory      Type = "category"
	TypeCategoryGroup Type = "category_group"
	TypeFacilityType  Type = "facility_type"
	TypeOwnership     Type = "ownership"
)

// Types lists every document type in creation order.
func Types() []Type {
	return []Type{
		TypeFacility, TypeLocation, TypeCategory,
		TypeCategoryGroup, TypeFacilityType, TypeOwnership,
	}
}

// Indexed field aliases shared by mappings and queries.
const (
	FieldID             = "id"
	FieldName           = "name"
	FieldPriority       = "priority"
	FieldPosition       = "position"
	FieldLat            = "lat"
	FieldLng            = "lng"
	FieldFacilityTypeID = "facility_type_id"
	FieldOwnershipID    = "ownership_id"
	FieldCategoryIDs    = "category_ids"
	FieldAdmIDs         = "adm_ids"
	FieldLevel          = "level"
	FieldParentID       = "parent_id"
	FieldGroupID        = "category_group_id"
)

// LocalizedNameField returns the alias of a per-locale name field.
func LocalizedNameField(locale string) string {
	return "name_" + locale
}

// Doc is any indexable document.
type Doc interface {
	DocID() int
}

// Key returns the storage key suffix of a document.
func Key(d Doc) string {
	return strconv.Itoa(d.DocID())
}

// Facility is the denormalized facility record.
type Facility struct {
	ID                int                          `json:"id"`
	SourceID          string                       `json:"source_id"`
	Name              string                       `json:"name"`
	FacilityTypeID    int                          `json:"facility_type_id"`
	FacilityType      string                       `json:"facility_type"`
	OwnershipID       *int                         `json:"ownership_id,omitempty"`
	Ownership         string                       `json:"ownership,omitempty"`
	Address           string                       `json:"address"`
	ContactName       string                       `json:"contact_name"`
	ContactEmail      string                       `json:"contact_email"`
	ContactPhone      string                       `json:"contact_phone"`
	Position          string                       `json:"position"` // "lng,lat"
	Lat               float64                      `json:"lat"`
	Lng               float64                      `json:"lng"`
	Adm               []string                     `json:"adm"`      // most specific first
	AdmIDs            []int                        `json:"adm_ids"`
	CategoryIDs       []int                        `json:"category_ids"`
	CategoriesByGroup map[string][]GroupCategories `json:"categories_by_group"` // keyed by locale
	OpeningHours      map[string]string            `json:"opening_hours"`       // keyed by locale
	Priority          int                          `json:"priority"`
	LastUpdated       string                       `json:"last_updated,omitempty"`
}

// DocID implements Doc.
func (f Facility) DocID() int { return f.ID }

// GroupCategories lists a facility's categories within one group for one locale.
type GroupCategories struct {
	CategoryGroupID int      `json:"category_group_id"`
	CategoryIDs     []int    `json:"category_ids"`
	Categories      []string `json:"categories"`
}

// CategoriesIn returns the facility's category names for a group and locale.
func (f *Facility) CategoriesIn(groupID int, locale string) []string {
	for _, g := range f.CategoriesByGroup[locale] {
		if g.CategoryGroupID == groupID {
			return g.Categories
		}
	}
	return nil
}

// Location is an administrative area.
type Location struct {
	ID            int    `json:"id"`
	SourceID      string `json:"source_id"`
	Name          string `json:"name"`
	ParentID      int    `json:"parent_id,omitempty"`
	ParentName    string `json:"parent_name,omitempty"`
	Level         int    `json:"level"`
	FacilityCount int    `json:"facility_count"`
}

// DocID implements Doc.
func (l Location) DocID() int { return l.ID }

// Category is a localized facility tag.
type Category struct {
	ID              int               `json:"id"`
	SourceID        string            `json:"source_id"`
	CategoryGroupID int               `json:"category_group_id"`
	Names           map[string]string `json:"names"`
	FacilityCount   int               `json:"facility_count"`
}

// DocID implements Doc.
func (c Category) DocID() int { return c.ID }

// CategoryGroup is a localized category family.
type CategoryGroup struct {
	ID       int               `json:"id"`
	SourceID string            `json:"source_id"`
	Names    map[string]string `json:"names"`
}

// DocID implements Doc.
func (g CategoryGroup) DocID() int { return g.ID }

// FacilityType carries the priority inherited by its facilities.
type FacilityType struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

// DocID implements Doc.
func (t FacilityType) DocID() int { return t.ID }

// Ownership is a distinct facility ownership.
type Ownership struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DocID implements Doc.
func (o Ownership) DocID() int { return o.ID }
