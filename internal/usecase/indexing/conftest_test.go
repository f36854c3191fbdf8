package indexing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
)

var (
	testLocales = []string{"en", "am"}
	testNow     = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
)

// mockIndex implements IndexWriter for tests.
type mockIndex struct {
	calls     []string
	meta      domain.IndexMeta
	upserted  map[document.Type][]document.Doc
	dropErr   error
	createErr error
	upsertErr error
}

func (m *mockIndex) DropIndex(_ context.Context) error {
	m.calls = append(m.calls, "drop")
	return m.dropErr
}

func (m *mockIndex) CreateIndex(_ context.Context, meta domain.IndexMeta) error {
	m.calls = append(m.calls, "create")
	m.meta = meta
	return m.createErr
}

func (m *mockIndex) PutMapping(_ context.Context, t document.Type) error {
	m.calls = append(m.calls, "mapping:"+string(t))
	return nil
}

func (m *mockIndex) BulkUpsert(_ context.Context, t document.Type, docs []document.Doc) error {
	m.calls = append(m.calls, "upsert:"+string(t))
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.upserted == nil {
		m.upserted = make(map[document.Type][]document.Doc)
	}
	m.upserted[t] = docs
	return nil
}

// facilityRow returns a valid facility row; overrides replace or delete (nil) keys.
func facilityRow(id string, overrides domain.Row) domain.Row {
	row := domain.Row{
		"id":               id,
		"name":             "Facility " + id,
		"lat":              10.696144,
		"lng":              38.370941,
		"location_id":      "L2",
		"ownership":        "Public",
		"facility_type":    "Health Center",
		"address":          "Main road",
		"contact_name":     "",
		"contact_email":    nil,
		"contact_phone":    nil,
		"last_update":      nil,
		"opening_hours:en": "8-17",
		"opening_hours:am": "2-11",
	}
	for k, v := range overrides {
		if v == nil {
			delete(row, k)
			continue
		}
		row[k] = v
	}
	return row
}

func testDataset() *domain.Dataset {
	return &domain.Dataset{
		Facilities: []domain.Row{
			facilityRow("F1", nil),
			facilityRow("F2", domain.Row{"facility_type": "Hospital", "ownership": "Private", "location_id": "L1"}),
		},
		Locations: []domain.Row{
			{"id": "L1", "name": "Ethiopia", "parent_id": "-----------------"},
			{"id": "L2", "name": "Addis Ababa", "parent_id": "L1"},
		},
		CategoryGroups: []domain.Row{
			{"id": "services", "name:en": "Services", "name:am": "አገልግሎቶች"},
			{"id": "equipment", "name:en": "Equipment", "name:am": "መሳሪያዎች"},
		},
		Categories: []domain.Row{
			{"id": "S1", "category_group_id": "services", "name:en": "Vaccines", "name:am": "ክትባቶች"},
			{"id": "S2", "category_group_id": "services", "name:en": "Dental, oral care", "name:am": "የጥርስ"},
			{"id": "E1", "category_group_id": "equipment", "name:en": "X-Ray", "name:am": "ራጅ"},
		},
		FacilityCategories: []domain.Row{
			{"facility_id": "F1", "category_id": "S1"},
			{"facility_id": "F1", "category_id": "S2"},
			{"facility_id": "F2", "category_id": "E1"},
		},
		FacilityTypes: []domain.Row{
			{"name": "Hospital", "priority": json.Number("3")},
		},
	}
}

func normalize(t *testing.T, ds *domain.Dataset) (*Graph, *Report) {
	t.Helper()
	report := newReport("test", testNow)
	g, err := Normalize(ds, testLocales, report)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return g, report
}

func hasEntry(entries []Entry, kind, sourceID string, reason Reason) bool {
	for _, e := range entries {
		if e.Kind == kind && e.SourceID == sourceID && e.Reason == reason {
			return true
		}
	}
	return false
}
