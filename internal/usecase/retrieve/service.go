// Package retrieve produces lexical candidates from every collection for a query.
package retrieve

import (
	"context"
	"fmt"
	"sort"

	"github.com/saferbites/saferbites/internal/domain/search/hit"
	"github.com/saferbites/saferbites/internal/domain/text"
)

// DefaultTopK is the per-collection candidate cap.
const DefaultTopK = 30

// Service retrieves candidates from collections in a fixed order.
type Service struct {
	collections []Collection
	topK        int
}

// New creates a retriever over collections, searched and concatenated in the given order.
func New(collections []Collection, topK int) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{collections: collections, topK: topK}
}

// TopK returns the configured default per-collection cap.
func (s *Service) TopK() int { return s.topK }

// Retrieve returns the per-collection candidates concatenated in collection order.
// A query without tokens yields no hits and no error.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) ([]hit.Hit, error) {
	groups, err := s.RetrieveGrouped(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	var out []hit.Hit
	for _, g := range groups {
		out = append(out, g...)
	}
	return out, nil
}

// RetrieveGrouped returns one ranked candidate list per collection, in collection order.
// Each list holds at most topK hits with positive score, sorted by score descending;
// ties keep document order. topK <= 0 uses the configured default.
func (s *Service) RetrieveGrouped(ctx context.Context, query string, topK int) ([][]hit.Hit, error) {
	if topK <= 0 {
		topK = s.topK
	}
	tokens := text.Tokenize(query)
	groups := make([][]hit.Hit, len(s.collections))
	if len(tokens) == 0 {
		return groups, nil
	}

	for i, c := range s.collections {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("retrieve %s: %w", c.Source(), err)
		}
		groups[i] = topHits(c, c.Score(tokens), topK)
	}
	return groups, nil
}

func topHits(c Collection, scores []float64, topK int) []hit.Hit {
	order := make([]int, 0, len(scores))
	for i, sc := range scores {
		if sc > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > topK {
		order = order[:topK]
	}

	hits := make([]hit.Hit, len(order))
	for i, idx := range order {
		hits[i] = hit.New(c.Document(idx), scores[idx])
	}
	return hits
}
