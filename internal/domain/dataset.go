package domain

// Row is a loosely typed dataset record as decoded from JSON.
type Row map[string]any

// Dataset is the raw input of one indexing run.
type Dataset struct {
	Facilities         []Row `json:"facilities"`
	Locations          []Row `json:"locations"`
	CategoryGroups     []Row `json:"category_groups"`
	Categories         []Row `json:"categories"`
	FacilityCategories []Row `json:"facility_categories"`
	FacilityTypes      []Row `json:"facility_types"`
}

// Size returns the total number of rows across all collections.
func (d *Dataset) Size() int {
	return len(d.Facilities) + len(d.Locations) + len(d.CategoryGroups) +
		len(d.Categories) + len(d.FacilityCategories) + len(d.FacilityTypes)
}
