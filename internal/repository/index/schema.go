package index

import (
	"fmt"

	"github.com/kailas-cloud/facilitydex/internal/db"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
)

// Schema returns the FT index definition of one document type.
// Category names get one TEXT field per locale, aliased name_<locale>.
func (r *Repo) Schema(t document.Type) (*db.IndexDefinition, error) {
	b := db.NewIndex(r.indexName(t)).
		Prefix(r.prefix(t)).
		Numeric("$.id").As(document.FieldID).Sortable()

	switch t {
	case document.TypeFacility:
		b.Text("$.name").As(document.FieldName).Sortable().
			Numeric("$.priority").As(document.FieldPriority).Sortable().
			Numeric("$.facility_type_id").As(document.FieldFacilityTypeID).
			Numeric("$.ownership_id").As(document.FieldOwnershipID).
			Numeric("$.category_ids[*]").As(document.FieldCategoryIDs).
			Numeric("$.adm_ids[*]").As(document.FieldAdmIDs).
			Geo("$.position").As(document.FieldPosition).
			Numeric("$.lat").As(document.FieldLat).
			Numeric("$.lng").As(document.FieldLng)
	case document.TypeLocation:
		b.Text("$.name").As(document.FieldName).Sortable().
			Numeric("$.level").As(document.FieldLevel).Sortable().
			Numeric("$.parent_id").As(document.FieldParentID)
	case document.TypeCategory:
		b.Numeric("$.category_group_id").As(document.FieldGroupID)
		for _, l := range r.locales {
			b.Text("$.names." + l).As(document.LocalizedNameField(l)).Sortable()
		}
	case document.TypeCategoryGroup:
	case document.TypeFacilityType:
		b.Text("$.name").As(document.FieldName).Sortable().
			Numeric("$.priority").As(document.FieldPriority).Sortable()
	case document.TypeOwnership:
		b.Text("$.name").As(document.FieldName).Sortable()
	default:
		return nil, fmt.Errorf("unknown document type %q", t)
	}

	return b.Build()
}

// Schemas returns the definitions of every document type.
func (r *Repo) Schemas() ([]*db.IndexDefinition, error) {
	types := document.Types()
	defs := make([]*db.IndexDefinition, 0, len(types))
	for _, t := range types {
		def, err := r.Schema(t)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}
