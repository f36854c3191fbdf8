package result

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kailas-cloud/facilitydex/internal/domain/document"
)

func TestFromDocument_DecodesPosition(t *testing.T) {
	f, err := FromDocument(document.Facility{ID: 7, Position: "38.370941,10.696144"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Position.Lat != 10.696144 || f.Position.Lng != 38.370941 {
		t.Errorf("Position = %+v", f.Position)
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"position":{"lat":10.696144,"lng":38.370941}`) {
		t.Errorf("expected decoded position in JSON, got %s", data)
	}
}

func TestFromDocument_BadPosition(t *testing.T) {
	if _, err := FromDocument(document.Facility{ID: 7, Position: "nowhere"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewPage_NextFrom(t *testing.T) {
	tests := []struct {
		name     string
		items    int
		from     int
		size     int
		wantNext int // -1 = absent
	}{
		{"full page", 2, 0, 2, 2},
		{"short page", 1, 2, 2, -1},
		{"empty page", 0, 0, 5, -1},
		{"full page with offset", 3, 6, 3, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(make([]Facility, tt.items), tt.from, tt.size)
			if tt.wantNext < 0 {
				if p.NextFrom != nil {
					t.Errorf("NextFrom = %d, want absent", *p.NextFrom)
				}
				return
			}
			if p.NextFrom == nil || *p.NextFrom != tt.wantNext {
				t.Errorf("NextFrom = %v, want %d", p.NextFrom, tt.wantNext)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	f, _ := FromDocument(document.Facility{
		ID: 1, Name: "FOO", Priority: 3, FacilityType: "Hospital",
		Position: "1,2", Adm: []string{"Addis", "Ethiopia"}, Address: "secret",
	})
	s := f.Summary()
	if s.ID != 1 || s.Name != "FOO" || s.Priority != 3 || s.FacilityType != "Hospital" {
		t.Errorf("Summary = %+v", s)
	}
	if s.Position.Lat != 2 || s.Position.Lng != 1 {
		t.Errorf("Summary position = %+v", s.Position)
	}
}

func TestLocalizeCategory(t *testing.T) {
	c := LocalizeCategory(document.Category{
		ID: 3, SourceID: "S1", CategoryGroupID: 1,
		Names: map[string]string{"en": "Vaccines", "am": "ክትባት"}, FacilityCount: 4,
	}, "am")
	if c.Name != "ክትባት" || c.FacilityCount != 4 || c.CategoryGroupID != 1 {
		t.Errorf("LocalizeCategory = %+v", c)
	}
}
