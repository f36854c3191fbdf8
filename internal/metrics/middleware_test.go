package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/facilities/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	r.Get("/api/dump", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	})
	r.Post("/api/datasets/import", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	return r
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/facilities/{id}", "200"))

	for _, id := range []string{"1", "2", "3"} {
		if rr := serve(r, "GET", "/api/facilities/"+id); rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/facilities/{id}", "200"))
	if after-before != 3 {
		t.Errorf("requests_total delta = %v, want 3", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_Statuses(t *testing.T) {
	r := newRouter()

	tests := []struct {
		method string
		path   string
		route  string
		status string
	}{
		{"POST", "/api/datasets/import", "/api/datasets/import", "422"},
		{"GET", "/nope", unmatchedRoute, "404"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.route, tc.status))
			serve(r, tc.method, tc.path)
			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.route, tc.status))
			if after-before != 1 {
				t.Errorf("requests_total{%s,%s,%s} delta = %v", tc.method, tc.route, tc.status, after-before)
			}
		})
	}
}

func TestMiddleware_ResponseBytes(t *testing.T) {
	r := newRouter()
	serve(r, "GET", "/api/dump")

	if n := testutil.CollectAndCount(httpResponseBytes, "facilitydex_http_response_bytes"); n == 0 {
		t.Fatal("expected response size observations")
	}
	if v := testutil.ToFloat64(httpInFlight); v != 0 {
		t.Errorf("in flight = %v after request completed", v)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", unmatchedRoute},
		{"/", "/"},
		{"/api/search", "/api/search"},
		{"/api/", "/api"},
		{"/api/facilities/{id}", "/api/facilities/{id}"},
	}

	for _, tc := range tests {
		if got := routeLabel(tc.input); got != tc.expected {
			t.Errorf("routeLabel(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestStatusWriter_CountsAndFlushes(t *testing.T) {
	rr := httptest.NewRecorder()
	ww := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	var f http.Flusher = ww
	_, _ = ww.Write([]byte("row\n"))
	_, _ = ww.Write([]byte("row\n"))
	f.Flush()

	if !rr.Flushed {
		t.Error("expected underlying recorder to be flushed")
	}
	if ww.bytes != 8 {
		t.Errorf("bytes = %d, want 8", ww.bytes)
	}
}
