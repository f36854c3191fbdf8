package indexing

import (
	"time"

	"github.com/kailas-cloud/facilitydex/internal/domain/document"
)

// Record kinds used in reports.
const (
	KindFacility         = "facility"
	KindLocation         = "location"
	KindCategory         = "category"
	KindCategoryGroup    = "category_group"
	KindFacilityType     = "facility_type"
	KindFacilityCategory = "facility_category"
)

// Reason explains why a record was skipped or a reference left unresolved.
type Reason string

// Skip and unresolved-reference reasons.
const (
	ReasonMissingID       Reason = "missing id"
	ReasonMissingName     Reason = "missing name"
	ReasonMissingType     Reason = "missing facility type"
	ReasonMissingLat      Reason = "missing latitude"
	ReasonMissingLng      Reason = "missing longitude"
	ReasonInvalidPosition Reason = "invalid coordinates"
	ReasonDuplicateID     Reason = "duplicate id"
	ReasonUnknownGroup    Reason = "unknown category group"
	ReasonUnknownFacility Reason = "unknown facility"
	ReasonUnknownCategory Reason = "unknown category"
	ReasonUnknownLocation Reason = "unknown location"
	ReasonUnknownParent   Reason = "unknown parent location"
	ReasonParentCycle     Reason = "parent cycle"
	ReasonInvalidPriority Reason = "invalid priority"
)

// Entry is one reported record.
type Entry struct {
	Kind     string `json:"kind"`
	SourceID string `json:"source_id"`
	Reason   Reason `json:"reason"`
}

// Report summarizes one indexing run. Skipped records were left out of the
// index; unresolved references were indexed without the dangling link.
type Report struct {
	RunID               string                `json:"run_id"`
	StartedAt           time.Time             `json:"started_at"`
	Duration            time.Duration         `json:"duration"`
	AdministrativeDepth int                   `json:"administrative_depth"`
	Indexed             map[document.Type]int `json:"indexed"`
	Skipped             []Entry               `json:"skipped"`
	Unresolved          []Entry               `json:"unresolved"`
}

func newReport(runID string, startedAt time.Time) *Report {
	return &Report{
		RunID:      runID,
		StartedAt:  startedAt,
		Indexed:    make(map[document.Type]int),
		Skipped:    []Entry{},
		Unresolved: []Entry{},
	}
}

func (r *Report) skip(kind, sourceID string, reason Reason) {
	r.Skipped = append(r.Skipped, Entry{Kind: kind, SourceID: sourceID, Reason: reason})
}

func (r *Report) unresolved(kind, sourceID string, reason Reason) {
	r.Unresolved = append(r.Unresolved, Entry{Kind: kind, SourceID: sourceID, Reason: reason})
}

// SkippedByKind counts skipped records per kind.
func (r *Report) SkippedByKind() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Skipped {
		counts[e.Kind]++
	}
	return counts
}
