package dump

import (
	"bytes"
	"context"
	"testing"

	"github.com/kailas-cloud/facilitydex/internal/db/memory"
	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
	"github.com/kailas-cloud/facilitydex/internal/repository/index"
	"github.com/kailas-cloud/facilitydex/internal/usecase/indexing"
	"github.com/kailas-cloud/facilitydex/internal/usecase/search"
)

func TestDump_IndexedDataset(t *testing.T) {
	ctx := context.Background()
	repo := index.New(memory.NewStore(), "t", testLocales)
	ds := &domain.Dataset{
		Facilities: []domain.Row{
			{"id": "F1", "name": "Bole Clinic", "facility_type": "Clinic", "location_id": "L2", "lat": 9.0, "lng": 38.8},
			{"id": "F2", "name": "Rural Post", "facility_type": "Health Post", "location_id": "L1", "lat": 7.0, "lng": 37.0},
			{"id": "F3", "name": "No Position", "facility_type": "Clinic", "location_id": "L1", "lat": 7.0},
		},
		Locations: []domain.Row{
			{"id": "L1", "name": "Ethiopia"},
			{"id": "L2", "name": "Addis Ababa", "parent_id": "L1"},
		},
		CategoryGroups: []domain.Row{
			{"id": "services", "name:en": "Services", "name:am": "አገልግሎቶች"},
		},
		Categories: []domain.Row{
			{"id": "S1", "category_group_id": "services", "name:en": "Dental, oral care", "name:am": "ጥርስ"},
		},
		FacilityCategories: []domain.Row{{"facility_id": "F1", "category_id": "S1"}},
	}
	if _, err := indexing.New(repo, testLocales, nil).Run(ctx, ds); err != nil {
		t.Fatalf("index: %v", err)
	}

	var buf bytes.Buffer
	svc := New(search.New(repo, testLocales), testLocales).WithPageSize(1)
	rows, err := svc.Dump(ctx, mustRequest(t, request.Params{}), &buf)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if rows != 2 {
		t.Fatalf("rows = %d, want 2", rows)
	}

	records := readCSV(t, buf.Bytes())
	if len(records[0]) != 11+2+2+2 {
		t.Errorf("header = %v", records[0])
	}
	first, second := records[1], records[2]
	if first[2] != "Bole Clinic" || first[13] != "Addis Ababa" || first[14] != "Ethiopia" {
		t.Errorf("first row = %q", first)
	}
	if first[15] != "Dental oral care" || first[16] != "ጥርስ" {
		t.Errorf("categories = %q %q", first[15], first[16])
	}
	if second[2] != "Rural Post" || second[13] != "Ethiopia" || second[14] != "" {
		t.Errorf("second row = %q", second)
	}
}
