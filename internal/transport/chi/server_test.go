package chi

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/geo"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/result"
)

func ids(items []result.Facility) []int {
	out := make([]int, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, false)
	tests := []struct {
		name         string
		target       string
		want         []int
		wantNextFrom *int
	}{
		{"prefix", "/api/search?q=bal", []int{1, 2}, nil},
		{"distance", "/api/search?lat=10&lng=38.7", []int{2, 3, 1}, nil},
		{"paged", "/api/search?lat=9&lng=38.7&size=2", []int{1, 3}, ptr(2)},
		{"last page", "/api/search?lat=9&lng=38.7&size=2&from=2", []int{2}, nil},
		{"filters", "/api/search?l=2&s=1", []int{1}, nil},
		{"ownership", "/api/search?o=2", []int{2}, nil},
		{"sort by type", "/api/search?sort=type", []int{2, 1, 3}, nil},
		{"sort by name", "/api/search?sort=name", []int{1, 3, 2}, nil},
		{"no match", "/api/search?q=zzz", []int{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.get(t, tt.target)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
			}
			resp := decodeBody[SearchResponse](t, rr)
			if got := ids(resp.Items); !slices.Equal(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
			switch {
			case tt.wantNextFrom == nil && resp.NextFrom != nil:
				t.Errorf("next_from = %d, want absent", *resp.NextFrom)
			case tt.wantNextFrom != nil && (resp.NextFrom == nil || *resp.NextFrom != *tt.wantNextFrom):
				t.Errorf("next_from = %v, want %d", resp.NextFrom, *tt.wantNextFrom)
			}
		})
	}
}

func TestSearch_ResponseShape(t *testing.T) {
	env := newTestEnv(t, false)
	rr := env.get(t, "/api/search?q=wet")

	body := rr.Body.String()
	if !strings.Contains(body, `"position":{"lat":9,"lng":38.7}`) {
		t.Errorf("position not decoded: %s", body)
	}
	if strings.Contains(body, "next_from") {
		t.Errorf("next_from should be omitted: %s", body)
	}
	resp := decodeBody[SearchResponse](t, rr)
	if resp.From != 0 || resp.Size != 1000 {
		t.Errorf("from/size = %d/%d, want 0/1000", resp.From, resp.Size)
	}
	if resp.Items[0].Position != (geo.Point{Lat: 9, Lng: 38.7}) {
		t.Errorf("position = %+v", resp.Items[0].Position)
	}
}

func TestSearch_BadRequest(t *testing.T) {
	env := newTestEnv(t, false)
	for _, target := range []string{
		"/api/search?size=abc",
		"/api/search?lat=north&lng=1",
		"/api/search?from=-1",
		"/api/search?sort=distance",
		"/api/search?sort=popularity",
		"/api/search?lat=91&lng=0",
		"/api/search?s=-3",
	} {
		rr := env.get(t, target)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rr.Code)
			continue
		}
		if resp := decodeBody[ErrorResponse](t, rr); resp.Code != ErrorCodeBadRequest {
			t.Errorf("%s: code = %s", target, resp.Code)
		}
	}
}

func TestSearch_EngineErrorIsGeneric(t *testing.T) {
	env := newTestEnv(t, true)
	rr := env.get(t, "/api/search?q=bal")

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	resp := decodeBody[ErrorResponse](t, rr)
	if resp.Code != ErrorCodeRetrievalFailed || resp.Message != "could not retrieve results" {
		t.Errorf("error = %+v", resp)
	}
}

func TestGetFacility(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.get(t, "/api/facilities/2")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	f := decodeBody[result.Facility](t, rr)
	if f.Name != "Balchi Hospital" || f.FacilityType != "Hospital" {
		t.Errorf("facility = %+v", f.Facility)
	}

	if rr := env.get(t, "/api/facilities/99"); rr.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d, want 404", rr.Code)
	}
	if rr := env.get(t, "/api/facilities/abc"); rr.Code != http.StatusBadRequest {
		t.Errorf("non-numeric: status = %d, want 400", rr.Code)
	}
}

func TestListings(t *testing.T) {
	env := newTestEnv(t, false)

	types := decodeBody[ListResponse[document.FacilityType]](t, env.get(t, "/api/facility_types"))
	if len(types.Items) != 2 || types.Items[0].Name != "Hospital" {
		t.Errorf("facility types = %+v", types.Items)
	}

	owners := decodeBody[ListResponse[document.Ownership]](t, env.get(t, "/api/ownerships"))
	if len(owners.Items) != 2 {
		t.Errorf("ownerships = %+v", owners.Items)
	}

	groups := decodeBody[ListResponse[document.CategoryGroup]](t, env.get(t, "/api/category_groups"))
	if len(groups.Items) != 1 || groups.Items[0].SourceID != "services" {
		t.Errorf("groups = %+v", groups.Items)
	}

	locs := decodeBody[ListResponse[document.Location]](t, env.get(t, "/api/locations?level=2"))
	if len(locs.Items) != 2 || locs.Items[0].Name != "Addis Ababa" || locs.Items[0].ParentName != "Ethiopia" {
		t.Errorf("locations = %+v", locs.Items)
	}

	cats := decodeBody[ListResponse[result.Category]](t, env.get(t, "/api/categories?locale=am"))
	if len(cats.Items) != 1 || cats.Items[0].Name != "ክትባቶች" {
		t.Errorf("categories = %+v", cats.Items)
	}

	if rr := env.get(t, "/api/categories?locale=fr"); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown locale: status = %d", rr.Code)
	}
	if rr := env.get(t, "/api/locations?level=x"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad level: status = %d", rr.Code)
	}

	empty := decodeBody[ListResponse[document.Location]](t, env.get(t, "/api/locations?parent_id=2"))
	if empty.Items == nil || len(empty.Items) != 0 {
		t.Errorf("empty listing should be [], got %v", empty.Items)
	}
}

func TestSuggest(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.get(t, "/api/suggest?q=addis")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	got := decodeBody[result.Suggestions](t, rr)
	if len(got.Facilities) != 1 || got.Facilities[0].Name != "Addis Clinic" {
		t.Errorf("facilities = %+v", got.Facilities)
	}
	if len(got.Locations) != 1 || got.Locations[0].Name != "Addis Ababa" {
		t.Errorf("locations = %+v", got.Locations)
	}

	got = decodeBody[result.Suggestions](t, env.get(t, "/api/suggest?q=%E1%8A%AD%E1%89%B5&locale=am"))
	if len(got.Categories) != 1 || got.Categories[0].Name != "ክትባቶች" {
		t.Errorf("am categories = %+v", got.Categories)
	}

	if rr := env.get(t, "/api/suggest"); rr.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", rr.Code)
	}
}

func TestDump(t *testing.T) {
	env := newTestEnv(t, false)
	rr := env.get(t, "/api/dump?l=1&from=2&size=1")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	// 11 base + 2 opening hours + 2 levels + 1 group x 2 locales
	if len(records[0]) != 17 {
		t.Errorf("header = %v", records[0])
	}
	if len(records) != 4 {
		t.Fatalf("records = %d, want header and 3 rows", len(records))
	}
	if records[1][2] != "1st Wetanibo Balchi" || records[1][15] != "Vaccines routine" {
		t.Errorf("first row = %q", records[1])
	}
}

func TestDump_Gzip(t *testing.T) {
	env := newTestEnv(t, false)
	rr := env.do(t, http.MethodGet, "/api/dump?t=1", nil, map[string]string{"Accept-Encoding": "br, gzip;q=0.8"})

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("content encoding = %q", rr.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	records, err := csv.NewReader(zr).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 || records[1][2] != "Balchi Hospital" {
		t.Errorf("records = %q", records)
	}
}

func TestDump_EngineErrorBeforeOutput(t *testing.T) {
	env := newTestEnv(t, true)
	rr := env.get(t, "/api/dump")

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestImportDataset(t *testing.T) {
	env := newTestEnv(t, false)
	auth := map[string]string{"Authorization": "Bearer " + testAPIKey}

	if rr := env.do(t, http.MethodPost, "/api/datasets/import", strings.NewReader(importBody), nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d", rr.Code)
	}

	rr := env.do(t, http.MethodPost, "/api/datasets/import", strings.NewReader(importBody), auth)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[ImportResponse](t, rr)
	if resp.RunID == "" || resp.Indexed[document.TypeFacility] != 1 || resp.AdministrativeDepth != 1 {
		t.Errorf("report = %+v", resp)
	}

	search := decodeBody[SearchResponse](t, env.get(t, "/api/search"))
	if len(search.Items) != 1 || search.Items[0].Name != "New Post" {
		t.Errorf("index not replaced: %+v", search.Items)
	}
}

func TestImportDataset_Compressed(t *testing.T) {
	env := newTestEnv(t, true)
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(importBody))
	_ = zw.Close()

	rr := env.do(t, http.MethodPost, "/api/datasets/import", &buf, map[string]string{
		"Authorization":    "Bearer " + testAPIKey,
		"Content-Encoding": "gzip",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestImportDataset_FromS3(t *testing.T) {
	env := newTestEnv(t, true)
	env.objects.body = []byte(importBody)
	auth := map[string]string{"Authorization": "Bearer " + testAPIKey}

	rr := env.do(t, http.MethodPost, "/api/datasets/import?location=s3://datasets/eth.json", nil, auth)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodPost, "/api/datasets/import?location=/etc/passwd", nil, auth)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("local path: status = %d, want 400", rr.Code)
	}
}

func TestImportDataset_Errors(t *testing.T) {
	env := newTestEnv(t, false)
	auth := map[string]string{"Authorization": "Bearer " + testAPIKey}

	rr := env.do(t, http.MethodPost, "/api/datasets/import", strings.NewReader("{"), auth)
	if rr.Code != http.StatusBadRequest || decodeBody[ErrorResponse](t, rr).Code != ErrorCodeInvalidDataset {
		t.Errorf("invalid json: status = %d", rr.Code)
	}

	untranslated := strings.Replace(importBody, `, "name:am": "አገልግሎቶች"`, "", 1)
	rr = env.do(t, http.MethodPost, "/api/datasets/import", strings.NewReader(untranslated), auth)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing translation: status = %d, body %s", rr.Code, rr.Body.String())
	}
	body := decodeBody[map[string]string](t, rr)
	if body["code"] != string(ErrorCodeMissingTranslation) || body["locale"] != "am" || body["source_id"] != "services" {
		t.Errorf("body = %v", body)
	}

	// The previous index is untouched.
	search := decodeBody[SearchResponse](t, env.get(t, "/api/search"))
	if len(search.Items) != 3 {
		t.Errorf("items = %d, want 3", len(search.Items))
	}

	rr = env.do(t, http.MethodPost, "/api/datasets/import", strings.NewReader(importBody),
		map[string]string{"Authorization": "Bearer " + testAPIKey, "Content-Encoding": "br"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unsupported encoding: status = %d", rr.Code)
	}
}

func TestResetIndexAndHealth(t *testing.T) {
	env := newTestEnv(t, false)

	health := decodeBody[HealthResponse](t, env.get(t, "/health"))
	if health.Status != "ok" || health.Checks["index"] != "ok" {
		t.Errorf("health = %+v", health)
	}

	rr := env.do(t, http.MethodDelete, "/api/index", nil, map[string]string{"Authorization": "Bearer " + testAPIKey})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("reset: status = %d", rr.Code)
	}

	health = decodeBody[HealthResponse](t, env.get(t, "/health"))
	if health.Status != "ok" || health.Checks["index"] != "ok" {
		t.Errorf("health after reset = %+v", health)
	}

	rr = env.get(t, "/api/search")
	if rr.Code != http.StatusOK {
		t.Fatalf("search after reset: status = %d", rr.Code)
	}
	resp := decodeBody[SearchResponse](t, rr)
	if len(resp.Items) != 0 || resp.NextFrom != nil {
		t.Errorf("search after reset = %+v, want empty page", resp)
	}
}

func TestHealth_DegradedWithoutIndex(t *testing.T) {
	env := newTestEnv(t, false)
	if err := env.repo.DropIndex(context.Background()); err != nil {
		t.Fatalf("drop index: %v", err)
	}

	rr := env.get(t, "/health")
	if rr.Code != http.StatusOK {
		t.Errorf("degraded health should still be 200, got %d", rr.Code)
	}
	health := decodeBody[HealthResponse](t, rr)
	if health.Status != "degraded" || health.Checks["index"] != "missing" {
		t.Errorf("health = %+v", health)
	}
	if rr := env.get(t, "/api/search"); rr.Code != http.StatusBadGateway {
		t.Errorf("search without index: status = %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	if rr := env.get(t, "/metrics"); rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestAcceptsGzip(t *testing.T) {
	tests := map[string]bool{
		"":                 false,
		"gzip":             true,
		"deflate, GZIP":    true,
		"br, gzip;q=0.5":   true,
		"x-gzip-something": false,
	}
	for header, want := range tests {
		req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set("Accept-Encoding", header)
		if got := acceptsGzip(req); got != want {
			t.Errorf("acceptsGzip(%q) = %v, want %v", header, got, want)
		}
	}
}

func ptr[T any](v T) *T { return &v }
