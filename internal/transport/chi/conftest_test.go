package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facilitydex/internal/dataset"
	"github.com/kailas-cloud/facilitydex/internal/db/memory"
	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/repository/index"
	dumpuc "github.com/kailas-cloud/facilitydex/internal/usecase/dump"
	healthuc "github.com/kailas-cloud/facilitydex/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/facilitydex/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/facilitydex/internal/usecase/search"
)

const testAPIKey = "secret"

var testLocales = []string{"en", "am"}

// mockObjects serves one S3 object body.
type mockObjects struct {
	body []byte
}

func (m *mockObjects) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(m.body))}, nil
}

type testEnv struct {
	router   http.Handler
	repo     *index.Repo
	indexing *indexinguc.Service
	objects  *mockObjects
}

// newTestEnv wires the full stack on the memory engine. The fixture is
// indexed unless empty is set.
func newTestEnv(t *testing.T, empty bool) *testEnv {
	t.Helper()
	store := memory.NewStore()
	repo := index.New(store, "t", testLocales)
	indexing := indexinguc.New(repo, testLocales, nil)
	if !empty {
		if _, err := indexing.Run(context.Background(), fixture()); err != nil {
			t.Fatalf("index fixture: %v", err)
		}
	}

	search := searchuc.New(repo, testLocales)
	objects := &mockObjects{}
	srv := NewServer(
		search,
		dumpuc.New(search, testLocales).WithPageSize(2),
		indexing,
		dataset.NewLoader(objects),
		healthuc.New(store, repo),
		zap.NewNop(),
	)

	r := gochi.NewRouter()
	srv.Mount(r, []string{testAPIKey})
	return &testEnv{router: r, repo: repo, indexing: indexing, objects: objects}
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = http.NoBody
	}
	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodGet, target, nil, nil)
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func fixture() *domain.Dataset {
	facility := func(id, name, typ, own, loc string, lat float64) domain.Row {
		row := domain.Row{
			"id": id, "name": name, "facility_type": typ, "location_id": loc,
			"lat": lat, "lng": 38.7, "opening_hours:en": "Mon-Fri", "opening_hours:am": "ሰኞ-አርብ",
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
		},
		Categories: []domain.Row{
			{"id": "S1", "category_group_id": "services", "name:en": "Vaccines, routine", "name:am": "ክትባቶች"},
		},
		FacilityCategories: []domain.Row{
			{"facility_id": "F1", "category_id": "S1"},
		},
		FacilityTypes: []domain.Row{
			{"name": "Hospital", "priority": 3},
			{"name": "Health Center", "priority": 1},
		},
	}
}

const importBody = `{
  "facilities": [{"id": "N1", "name": "New Post", "facility_type": "Health Post", "lat": 7.5, "lng": 38.0, "location_id": "R1"}],
  "locations": [{"id": "R1", "name": "Oromia"}],
  "category_groups": [{"id": "services", "name:en": "Services", "name:am": "አገልግሎቶች"}],
  "categories": [],
  "facility_categories": [],
  "facility_types": []
}`
