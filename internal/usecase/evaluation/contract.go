package evaluation

import (
	"context"

	searchuc "github.com/saferbites/saferbites/internal/usecase/search"
)

// Searcher runs the query pipeline under evaluation.
type Searcher interface {
	Search(ctx context.Context, query string, opts searchuc.Options) (searchuc.Result, error)
}
