package search

import (
	"context"

	"github.com/saferbites/saferbites/internal/domain/search/establishment"
	"github.com/saferbites/saferbites/internal/domain/search/hit"
)

// Retriever produces ranked lexical candidates, one list per collection.
type Retriever interface {
	RetrieveGrouped(ctx context.Context, query string, topK int) ([][]hit.Hit, error)
}

// Reranker reorders candidates by semantic similarity.
type Reranker interface {
	Enabled() bool
	Rerank(ctx context.Context, query string, hits []hit.Hit) ([]hit.Hit, error)
}

// Aggregator folds hits into establishments.
type Aggregator interface {
	Aggregate(hits []hit.Hit, query string) []establishment.Aggregate
}
