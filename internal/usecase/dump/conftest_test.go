package dump

import (
	"context"
	"testing"

	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/geo"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/result"
)

var testLocales = []string{"en", "am"}

type pageCall struct {
	from, size int
}

// mockSearcher pages over a fixed facility list.
type mockSearcher struct {
	facilities []result.Facility
	depth      int
	groups     []document.CategoryGroup
	calls      []pageCall
	searchErr  error
	failAfter  int // fail the search call with this index when searchErr is set
	depthErr   error
}

func (m *mockSearcher) Search(_ context.Context, req *request.Request) (*result.Page, error) {
	m.calls = append(m.calls, pageCall{from: req.From(), size: req.Size()})
	if m.searchErr != nil && len(m.calls) > m.failAfter {
		return nil, m.searchErr
	}
	from := min(req.From(), len(m.facilities))
	to := min(from+req.Size(), len(m.facilities))
	return result.NewPage(m.facilities[from:to], req.From(), req.Size()), nil
}

func (m *mockSearcher) AdministrativeDepth(_ context.Context) (int, error) {
	return m.depth, m.depthErr
}

func (m *mockSearcher) CategoryGroups(_ context.Context) ([]document.CategoryGroup, error) {
	return m.groups, nil
}

func testGroups() []document.CategoryGroup {
	return []document.CategoryGroup{
		{ID: 1, SourceID: "services", Names: map[string]string{"en": "Services", "am": "አገልግሎቶች"}},
		{ID: 2, SourceID: "equipment", Names: map[string]string{"en": "Equipment", "am": "መሳሪያዎች"}},
	}
}

func testFacility(id int, adm ...string) result.Facility {
	return result.Facility{
		Facility: document.Facility{
			ID:           id,
			SourceID:     "F" + string(rune('0'+id)),
			Name:         "Facility",
			FacilityType: "Hospital",
			Adm:          adm,
			OpeningHours: map[string]string{"en": "24h", "am": "24 ሰዓት"},
			CategoriesByGroup: map[string][]document.GroupCategories{
				"en": {
					{CategoryGroupID: 1, CategoryIDs: []int{1, 2}, Categories: []string{"Vaccines", "Dental, oral care"}},
					{CategoryGroupID: 2},
				},
				"am": {
					{CategoryGroupID: 1, CategoryIDs: []int{1, 2}, Categories: []string{"ክትባቶች", "ጥርስ"}},
					{CategoryGroupID: 2},
				},
			},
		},
		Position: geo.Point{Lat: 9.03, Lng: 38.74},
	}
}

func mustRequest(t *testing.T, p request.Params) *request.Request {
	t.Helper()
	req, err := request.New(p)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return &req
}
