// Package rerank reorders lexical candidates by embedding similarity to the query.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"github.com/saferbites/saferbites/internal/domain"
	"github.com/saferbites/saferbites/internal/domain/search/hit"
)

// Options configures the reranker.
type Options struct {
	Enabled bool
	// Prefixes prepended to the query and to each evidence text before embedding.
	QueryInstruction    string
	DocumentInstruction string
}

// Service scores hits by cosine similarity between the query and the evidence text.
type Service struct {
	embed Embedder
	opts  Options
}

// New creates a reranker. A nil embedder disables reranking.
func New(embed Embedder, opts Options) *Service {
	return &Service{embed: embed, opts: opts}
}

// Enabled reports whether Rerank changes anything.
func (s *Service) Enabled() bool {
	return s != nil && s.opts.Enabled && s.embed != nil
}

// Rerank returns a new slice of hits carrying semantic scores, sorted descending by them.
// Equal scores keep input order. When disabled, or when hits is empty, the input order is
// returned unchanged. Any embedding failure is wrapped in domain.ErrRerankUnavailable and no
// hits are returned.
func (s *Service) Rerank(ctx context.Context, query string, hits []hit.Hit) ([]hit.Hit, error) {
	out := make([]hit.Hit, len(hits))
	copy(out, hits)
	if len(out) == 0 || !s.Enabled() {
		return out, nil
	}

	texts := make([]string, 0, len(out)+1)
	texts = append(texts, s.opts.QueryInstruction+query)
	for _, h := range out {
		texts = append(texts, s.opts.DocumentInstruction+evidenceText(h))
	}

	res, err := domain.EmbedAll(ctx, s.embed, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRerankUnavailable, err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			domain.ErrRerankUnavailable, len(res.Embeddings), len(texts))
	}

	queryVec := res.Embeddings[0]
	for i := range out {
		sim, err := domain.CosineSimilarity(queryVec, res.Embeddings[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: hit %s: %w", domain.ErrRerankUnavailable, out[i].Document().ID(), err)
		}
		out[i] = out[i].WithSemantic(sim)
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].EffectiveScore() > out[b].EffectiveScore()
	})
	return out, nil
}

// evidenceText is the text embedded for a hit: the original excerpt when available.
func evidenceText(h hit.Hit) string {
	d := h.Document()
	if d.OriginalText() != "" {
		return d.OriginalText()
	}
	return d.Text()
}
