// Package chi exposes the facility directory over HTTP.
package chi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facilitydex/internal/dataset"
	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
	"github.com/kailas-cloud/facilitydex/internal/logger"
	dumpuc "github.com/kailas-cloud/facilitydex/internal/usecase/dump"
	healthuc "github.com/kailas-cloud/facilitydex/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/facilitydex/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/facilitydex/internal/usecase/search"
)

const defaultMaxUploadBytes = 256 << 20

// Server serves the facility directory API.
type Server struct {
	search         *searchuc.Service
	dump           *dumpuc.Service
	indexing       *indexinguc.Service
	datasets       *dataset.Loader
	health         *healthuc.Service
	logger         *zap.Logger
	defaultSize    int
	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	dump *dumpuc.Service,
	indexing *indexinguc.Service,
	datasets *dataset.Loader,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:         search,
		dump:           dump,
		indexing:       indexing,
		datasets:       datasets,
		health:         health,
		logger:         logger,
		defaultSize:    request.DefaultSize,
		maxUploadBytes: defaultMaxUploadBytes,
		errorHandlers:  defaultErrorHandlers(),
	}
}

// WithDefaultPageSize sets the search size used when the caller omits one.
func (s *Server) WithDefaultPageSize(n int) *Server {
	if n > 0 {
		s.defaultSize = n
	}
	return s
}

// WithMaxUploadBytes bounds dataset upload bodies.
func (s *Server) WithMaxUploadBytes(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// Mount registers every route on r. apiKeys guard the dataset routes.
func (s *Server) Mount(r gochi.Router, apiKeys []string) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r gochi.Router) {
		r.Get("/search", s.Search)
		r.Get("/dump", s.Dump)
		r.Get("/suggest", s.Suggest)
		r.Get("/facilities/{id}", s.GetFacility)
		r.Get("/facility_types", s.ListFacilityTypes)
		r.Get("/ownerships", s.ListOwnerships)
		r.Get("/locations", s.ListLocations)
		r.Get("/categories", s.ListCategories)
		r.Get("/category_groups", s.ListCategoryGroups)

		r.Group(func(r gochi.Router) {
			r.Use(BearerAuthMiddleware(apiKeys))
			r.Post("/datasets/import", s.ImportDataset)
			r.Delete("/index", s.ResetIndex)
		})
	})
}

// Search handles GET /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := s.searchRequest(w, r, s.defaultSize)
	if !ok {
		return
	}
	page, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err, msgRetrievalFailed)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Items:    page.Items,
		From:     page.From,
		Size:     page.Size,
		NextFrom: page.NextFrom,
	})
}

// Dump handles GET /api/dump. Pagination parameters are ignored.
func (s *Server) Dump(w http.ResponseWriter, r *http.Request) {
	req, ok := s.searchRequest(w, r, 0)
	if !ok {
		return
	}
	out := newCSVResponse(w, acceptsGzip(r))
	rows, err := s.dump.Dump(r.Context(), req, out)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		return
	}
	if !out.started {
		s.handleDomainError(w, err, msgRetrievalFailed)
		return
	}
	logger.FromContext(r.Context()).Error("dump aborted after partial output",
		zap.Int("rows", rows),
		zap.Error(err),
	)
}

// Suggest handles GET /api/suggest.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	var locale *string
	if err := bindQuery(r, queryParam{"locale", &locale}); err != nil {
		s.handleDomainError(w, err, msgRetrievalFailed)
		return
	}
	req, ok := s.searchRequest(w, r, s.defaultSize)
	if !ok {
		return
	}
	sugg, err := s.search.Suggest(r.Context(), req, deref(locale))
	if err != nil {
		s.handleDomainError(w, err, msgRetrievalFailed)
		return
	}
	writeJSON(w, http.StatusOK, sugg)
}

// GetFacility handles GET /api/facilities/{id}.
func (s *Server) GetFacility(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(gochi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "facility id must be an integer")
		return
	}
	f, err := s.search.GetFacility(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err, msgRetrievalFailed)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// ListFacilityTypes handles GET /api/facility_types.
func (s *Server) ListFacilityTypes(w http.ResponseWriter, r *http.Request) {
	items, err := s.search.FacilityTypes(r.Context())
	writeList(s, w, items, err)
}

// ListOwnerships handles GET /api/ownerships.
func (s *Server) ListOwnerships(w http.ResponseWriter, r *http.Request) {
	items, err := s.search.Ownerships(r.Context())
	writeList(s, w, items, err)
}

// ListCategoryGroups handles GET /api/category_groups.
func (s *Server) ListCategoryGroups(w http.ResponseWriter, r *http.Request) {
	items, err := s.search.CategoryGroups(r.Context())
	writeList(s, w, items, err)
}

// ListCategories handles GET /api/categories?locale=&group=.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	var (
		locale *string
		group  *int
	)
	if err := bindQuery(r, queryParam{"locale", &locale}, queryParam{"group", &group}); err != nil {
		s.handleDomainError(w, err, msgRetrievalFailed)
		return
	}
	items, err := s.search.Categories(r.Context(), deref(locale), deref(group))
	writeList(s, w, items, err)
}

// ListLocations handles GET /api/locations?level=&parent_id=.
func (s *Server) ListLocations(w http.ResponseWriter, r *http.Request) {
	var level, parent *int
	if err := bindQuery(r, queryParam{"level", &level}, queryParam{"parent_id", &parent}); err != nil {
		s.handleDomainError(w, err, msgRetrievalFailed)
		return
	}
	items, err := s.search.Locations(r.Context(), searchuc.LocationFilter{
		Level:    deref(level),
		ParentID: deref(parent),
	})
	writeList(s, w, items, err)
}

// ImportDataset handles POST /api/datasets/import. The dataset is either the
// request body (Content-Encoding gzip or zstd accepted) or an object named by
// ?location=s3://bucket/key.
func (s *Server) ImportDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.readDataset(w, r)
	if err != nil {
		s.handleDomainError(w, err, msgIndexingFailed)
		return
	}

	// A client disconnect must not abort a run halfway through the index reset.
	report, err := s.indexing.Run(context.WithoutCancel(r.Context()), ds)
	if err != nil {
		s.handleDomainError(w, err, msgIndexingFailed)
		return
	}
	writeJSON(w, http.StatusOK, importResponse(report))
}

func (s *Server) readDataset(w http.ResponseWriter, r *http.Request) (*domain.Dataset, error) {
	if location := r.URL.Query().Get("location"); location != "" {
		if !strings.HasPrefix(location, "s3://") {
			return nil, fmt.Errorf("%w: location must be an s3:// url", domain.ErrInvalidRequest)
		}
		return s.datasets.Load(r.Context(), location)
	}
	enc, err := dataset.ParseEncoding(r.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, err
	}
	return dataset.Decode(http.MaxBytesReader(w, r.Body, s.maxUploadBytes), enc)
}

// ResetIndex handles DELETE /api/index.
func (s *Server) ResetIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.indexing.Reset(r.Context()); err != nil {
		s.handleDomainError(w, err, msgIndexingFailed)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func (s *Server) searchRequest(w http.ResponseWriter, r *http.Request, defaultSize int) (*request.Request, bool) {
	p, err := searchParams(r, defaultSize)
	if err != nil {
		s.handleDomainError(w, err, msgRetrievalFailed)
		return nil, false
	}
	req, err := request.New(p)
	if err != nil {
		s.handleDomainError(w, err, msgRetrievalFailed)
		return nil, false
	}
	return &req, true
}

func writeList[T any](s *Server, w http.ResponseWriter, items []T, err error) {
	if err != nil {
		s.handleDomainError(w, err, msgRetrievalFailed)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, ListResponse[T]{Items: items})
}

// handleDomainError maps err through the handler chain. Unclaimed errors come
// from the engine and surface as 502 with fallback.
func (s *Server) handleDomainError(w http.ResponseWriter, err error, fallback string) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("engine error", zap.Error(err))
	code := ErrorCodeRetrievalFailed
	if fallback == msgIndexingFailed {
		code = ErrorCodeIndexingFailed
	}
	writeError(w, http.StatusBadGateway, code, fallback)
}
