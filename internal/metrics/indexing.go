package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing and query Prometheus metrics.
var (
	IndexingRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facilitydex",
			Name:      "indexing_runs_total",
			Help:      "Total number of indexing runs",
		},
		[]string{"status"}, // "ok" / "invalid" / "error"
	)

	IndexingRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "facilitydex",
			Name:      "indexing_run_duration_seconds",
			Help:      "Indexing run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	IndexedDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "facilitydex",
			Name:      "indexed_documents",
			Help:      "Documents written by the last successful indexing run",
		},
		[]string{"type"},
	)

	SkippedRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facilitydex",
			Name:      "skipped_records_total",
			Help:      "Dataset records skipped during normalization",
		},
		[]string{"kind"},
	)

	DumpRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "facilitydex",
			Name:      "dump_rows_total",
			Help:      "CSV rows written by dumps",
		},
	)
)

func init() {
	prometheus.MustRegister(IndexingRunsTotal)
	prometheus.MustRegister(IndexingRunDuration)
	prometheus.MustRegister(IndexedDocuments)
	prometheus.MustRegister(SkippedRecordsTotal)
	prometheus.MustRegister(DumpRowsTotal)
}
