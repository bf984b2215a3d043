package search

import (
	"context"
	"testing"

	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/domain/search/hit"
)

type mockRetriever struct {
	groups  [][]hit.Hit
	err     error
	lastTop int
	calls   int
}

func (m *mockRetriever) RetrieveGrouped(ctx context.Context, _ string, topK int) ([][]hit.Hit, error) {
	m.calls++
	m.lastTop = topK
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.groups, nil
}

type mockReranker struct {
	enabled bool
	err     error
	scores  map[string]float64
	calls   int
}

func (m *mockReranker) Enabled() bool { return m.enabled }

func (m *mockReranker) Rerank(_ context.Context, _ string, hits []hit.Hit) ([]hit.Hit, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]hit.Hit, len(hits))
	for i, h := range hits {
		out[i] = h.WithSemantic(m.scores[h.Document().ID()])
	}
	// reverse input order so callers can tell reranked output apart
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func newHit(t *testing.T, id, est string, source domdoc.Source, score float64) hit.Hit {
	t.Helper()
	d, err := domdoc.New(id, est, "Name "+est, "text", "Text", source, nil)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return hit.New(d, score)
}

func ids(hits []hit.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Document().ID()
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
