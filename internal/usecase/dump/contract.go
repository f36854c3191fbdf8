package dump

import (
	"context"

	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/result"
)

// Searcher is the read side the export drives.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (*result.Page, error)
	AdministrativeDepth(ctx context.Context) (int, error)
	CategoryGroups(ctx context.Context) ([]document.CategoryGroup, error)
}
