// Package indexing turns a raw dataset into index documents and writes them
// in one full-batch run.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/logger"
	"github.com/kailas-cloud/facilitydex/internal/metrics"
)

// Service runs indexing. Runs are serialized; a concurrent Run or Reset fails
// with domain.ErrIndexingInProgress.
type Service struct {
	index   IndexWriter
	locales []string
	logger  *zap.Logger

	mu    sync.Mutex
	now   func() time.Time
	runID func() string
}

// New creates an indexing service.
func New(index IndexWriter, locales []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		index:   index,
		locales: locales,
		logger:  logger,
		now:     time.Now,
		runID:   uuid.NewString,
	}
}

// Run normalizes ds, resets the index and writes every document.
// Validation happens before the index is touched, so a dataset with a missing
// translation leaves the previous index in place. The report is returned
// whenever normalization got far enough to produce one.
func (s *Service) Run(ctx context.Context, ds *domain.Dataset) (*Report, error) {
	if !s.mu.TryLock() {
		return nil, domain.ErrIndexingInProgress
	}
	defer s.mu.Unlock()

	start := s.now()
	report := newReport(s.runID(), start)
	log := logger.FromContextOr(ctx, s.logger).With(zap.String("run_id", report.RunID))

	err := s.run(ctx, ds, report)
	report.Duration = s.now().Sub(start)
	s.observe(log, report, err)
	return report, err
}

func (s *Service) run(ctx context.Context, ds *domain.Dataset, report *Report) error {
	graph, err := Normalize(ds, s.locales, report)
	if err != nil {
		return err
	}
	report.AdministrativeDepth = graph.AdministrativeDepth
	docs := BuildDocuments(graph, s.locales)

	meta := domain.IndexMeta{
		RunID:               report.RunID,
		CreatedAt:           report.StartedAt,
		Locales:             s.locales,
		AdministrativeDepth: graph.AdministrativeDepth,
	}
	if err := s.reset(ctx, meta); err != nil {
		return err
	}

	for _, b := range docs.Batches() {
		if err := s.index.BulkUpsert(ctx, b.Type, b.Docs); err != nil {
			return fmt.Errorf("index %s documents: %w", b.Type, err)
		}
		report.Indexed[b.Type] = len(b.Docs)
	}
	return nil
}

// Reset leaves an empty index with mappings in place.
func (s *Service) Reset(ctx context.Context) error {
	if !s.mu.TryLock() {
		return domain.ErrIndexingInProgress
	}
	defer s.mu.Unlock()

	return s.reset(ctx, domain.IndexMeta{
		RunID:     s.runID(),
		CreatedAt: s.now(),
		Locales:   s.locales,
	})
}

func (s *Service) reset(ctx context.Context, meta domain.IndexMeta) error {
	if err := s.index.DropIndex(ctx); err != nil {
		return fmt.Errorf("drop index: %w", err)
	}
	if err := s.index.CreateIndex(ctx, meta); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	for _, t := range document.Types() {
		if err := s.index.PutMapping(ctx, t); err != nil {
			return fmt.Errorf("put mapping: %w", err)
		}
	}
	return nil
}

func (s *Service) observe(log *zap.Logger, report *Report, err error) {
	metrics.IndexingRunDuration.Observe(report.Duration.Seconds())
	for kind, n := range report.SkippedByKind() {
		metrics.SkippedRecordsTotal.WithLabelValues(kind).Add(float64(n))
	}

	if err != nil {
		status := "error"
		if errors.Is(err, domain.ErrMissingTranslation) || errors.Is(err, domain.ErrInvalidDataset) {
			status = "invalid"
		}
		metrics.IndexingRunsTotal.WithLabelValues(status).Inc()
		log.Error("Indexing run failed",
			zap.String("status", status),
			zap.Duration("duration", report.Duration),
			zap.Error(err),
		)
		return
	}

	metrics.IndexingRunsTotal.WithLabelValues("ok").Inc()
	for t, n := range report.Indexed {
		metrics.IndexedDocuments.WithLabelValues(string(t)).Set(float64(n))
	}
	log.Info("Indexing run completed",
		zap.Duration("duration", report.Duration),
		zap.Int("facilities", report.Indexed[document.TypeFacility]),
		zap.Int("locations", report.Indexed[document.TypeLocation]),
		zap.Int("categories", report.Indexed[document.TypeCategory]),
		zap.Int("administrative_depth", report.AdministrativeDepth),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("unresolved", len(report.Unresolved)),
	)
}
