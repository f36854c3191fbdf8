package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/facilitydex/internal/db"
	"github.com/kailas-cloud/facilitydex/internal/db/memory"
	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
	"github.com/kailas-cloud/facilitydex/internal/repository/index"
	"github.com/kailas-cloud/facilitydex/internal/usecase/indexing"
)

var testLocales = []string{"en", "am"}

// mockRepo implements Repository for tests.
type mockRepo struct {
	queryFn func(ctx context.Context, t document.Type, q db.Query) ([]db.Hit, error)
	getFn   func(ctx context.Context, t document.Type, id int) ([]byte, error)
}

func (m *mockRepo) Query(ctx context.Context, t document.Type, q db.Query) ([]db.Hit, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, t, q)
	}
	return nil, nil
}

func (m *mockRepo) Get(ctx context.Context, t document.Type, id int) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, t, id)
	}
	return nil, domain.ErrNotFound
}

// fixture indexes three facilities:
//
//	1 "1st Wetanibo Balchi" Health Center, Public,  Addis Ababa, (9.0, 38.7), Vaccines
//	2 "Balchi Hospital"     Hospital,      Private, Amhara,      (10.0, 38.7)
//	3 "Addis Clinic"        Health Center, -,       Addis Ababa, (9.5, 38.7), Vaccines + X-Ray
func fixture() *domain.Dataset {
	facility := func(id, name, typ, own, loc string, lat float64) domain.Row {
		row := domain.Row{
			"id": id, "name": name, "facility_type": typ, "location_id": loc,
			"lat": lat, "lng": 38.7, "address": "", "contact_phone": 911,
			"opening_hours:en": "Mon-Fri", "opening_hours:am": "ሰኞ-አርብ",
		}
		if own != "" {
			row["ownership"] = own
		}
		return row
	}
	return &domain.Dataset{
		Facilities: []domain.Row{
			facility("F1", "1st Wetanibo Balchi", "Health Center", "Public", "L2", 9.0),
			facility("F2", "Balchi Hospital", "Hospital", "Private", "L3", 10.0),
			facility("F3", "Addis Clinic", "Health Center", "", "L2", 9.5),
		},
		Locations: []domain.Row{
			{"id": "L1", "name": "Ethiopia"},
			{"id": "L2", "name": "Addis Ababa", "parent_id": "L1"},
			{"id": "L3", "name": "Amhara", "parent_id": "L1"},
		},
		CategoryGroups: []domain.Row{
			{"id": "services", "name:en": "Services", "name:am": "አገልግሎቶች"},
			{"id": "equipment", "name:en": "Equipment", "name:am": "መሳሪያዎች"},
		},
		Categories: []domain.Row{
			{"id": "S1", "category_group_id": "services", "name:en": "Vaccines", "name:am": "ክትባቶች"},
			{"id": "S2", "category_group_id": "services", "name:en": "Vaccination records", "name:am": "መዝገብ"},
			{"id": "E1", "category_group_id": "equipment", "name:en": "X-Ray", "name:am": "ራጅ"},
		},
		FacilityCategories: []domain.Row{
			{"facility_id": "F1", "category_id": "S1"},
			{"facility_id": "F3", "category_id": "S1"},
			{"facility_id": "F3", "category_id": "E1"},
		},
		FacilityTypes: []domain.Row{
			{"name": "Hospital", "priority": 3},
			{"name": "Health Center", "priority": 1},
		},
	}
}

func newIndexedService(t *testing.T) *Service {
	t.Helper()
	repo := index.New(memory.NewStore(), "t", testLocales)
	if _, err := indexing.New(repo, testLocales, nil).Run(context.Background(), fixture()); err != nil {
		t.Fatalf("index fixture: %v", err)
	}
	return New(repo, testLocales)
}

func mustRequest(t *testing.T, p request.Params) *request.Request {
	t.Helper()
	req, err := request.New(p)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return &req
}

func ptr[T any](v T) *T { return &v }

