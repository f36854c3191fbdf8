// Package dump exports every facility matching a search as CSV.
package dump

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/result"
	"github.com/kailas-cloud/facilitydex/internal/logger"
	"github.com/kailas-cloud/facilitydex/internal/metrics"
)

// Export defaults.
const (
	DefaultPageSize = 200
	DefaultMaxRows  = 1_000_000
)

var baseColumns = []string{
	"id", "source_id", "name", "lat", "lng", "facility_type", "ownership",
	"address", "contact_name", "contact_email", "contact_phone",
}

// Service streams search results as CSV.
type Service struct {
	search   Searcher
	locales  []string
	pageSize int
	maxRows  int
}

// New creates a dump service.
func New(search Searcher, locales []string) *Service {
	return &Service{
		search:   search,
		locales:  locales,
		pageSize: DefaultPageSize,
		maxRows:  DefaultMaxRows,
	}
}

// WithPageSize sets the page size used against the index.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// WithMaxRows bounds the number of rows a single export may write.
func (s *Service) WithMaxRows(n int) *Service {
	if n > 0 {
		s.maxRows = n
	}
	return s
}

// Dump writes the header and one row per facility matching req to w.
// The request's pagination is ignored. Output is flushed once per page; pages
// flushed before an error stay written, a failing first page writes nothing.
// Returns the number of facility rows written.
func (s *Service) Dump(ctx context.Context, req *request.Request, w io.Writer) (int, error) {
	depth, err := s.search.AdministrativeDepth(ctx)
	if err != nil {
		return 0, err
	}
	groups, err := s.search.CategoryGroups(ctx)
	if err != nil {
		return 0, err
	}

	out := newQuotedWriter(w)
	if err := out.Write(s.header(depth, groups)); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	rows := 0
	from := 0
	for {
		pageReq := req.WithPage(from, s.pageSize)
		page, err := s.search.Search(ctx, &pageReq)
		if err != nil {
			return rows, err
		}
		if rows+len(page.Items) > s.maxRows {
			return rows, fmt.Errorf("%w: more than %d rows", domain.ErrDumpLimitExceeded, s.maxRows)
		}
		for i := range page.Items {
			if err := out.Write(s.row(&page.Items[i], depth, groups)); err != nil {
				return rows, fmt.Errorf("write row: %w", err)
			}
		}
		rows += len(page.Items)
		metrics.DumpRowsTotal.Add(float64(len(page.Items)))
		if err := out.Flush(); err != nil {
			return rows, fmt.Errorf("flush: %w", err)
		}

		if page.NextFrom == nil || *page.NextFrom <= from {
			break
		}
		from = *page.NextFrom
	}

	logger.FromContext(ctx).Info("dump finished",
		zap.Int("rows", rows),
		zap.Int("administrative_depth", depth),
	)
	return rows, nil
}

func (s *Service) header(depth int, groups []document.CategoryGroup) []string {
	h := make([]string, 0, len(baseColumns)+len(s.locales)*(1+len(groups))+depth)
	h = append(h, baseColumns...)
	for _, l := range s.locales {
		h = append(h, "opening_hours:"+l)
	}
	for i := 1; i <= depth; i++ {
		h = append(h, "location_"+strconv.Itoa(i))
	}
	for _, g := range groups {
		for _, l := range s.locales {
			h = append(h, g.SourceID+":"+l)
		}
	}
	return h
}

func (s *Service) row(f *result.Facility, depth int, groups []document.CategoryGroup) []string {
	r := make([]string, 0, len(baseColumns)+len(s.locales)*(1+len(groups))+depth)
	r = append(r,
		strconv.Itoa(f.ID),
		f.SourceID,
		f.Name,
		formatCoord(f.Position.Lat),
		formatCoord(f.Position.Lng),
		f.FacilityType,
		f.Ownership,
		f.Address,
		f.ContactName,
		f.ContactEmail,
		f.ContactPhone,
	)
	for _, l := range s.locales {
		r = append(r, f.OpeningHours[l])
	}
	// adm keeps its most-specific-first order and is padded on the right.
	for i := range depth {
		if i < len(f.Adm) {
			r = append(r, f.Adm[i])
		} else {
			r = append(r, "")
		}
	}
	for _, g := range groups {
		for _, l := range s.locales {
			r = append(r, joinCategories(f.CategoriesIn(g.ID, l)))
		}
	}
	return r
}

// joinCategories strips commas from each name so the joined list stays one column value.
func joinCategories(names []string) string {
	clean := make([]string, len(names))
	for i, n := range names {
		clean[i] = strings.ReplaceAll(n, ",", "")
	}
	return strings.Join(clean, ",")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
