package rerank

import (
	"context"
	"errors"
	"testing"

	"github.com/saferbites/saferbites/internal/domain"
	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/domain/search/hit"
)

// mockEmbedder maps texts to fixed vectors and records batch calls.
type mockEmbedder struct {
	vectors    map[string][]float32
	err        error
	batchCalls int
	batchTexts [][]string
	embedCalls int
	dropLast   bool
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vectors[text]}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.batchTexts = append(m.batchTexts, texts)
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, ok := m.vectors[t]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out = append(out, v)
	}
	if m.dropLast {
		out = out[:len(out)-1]
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

// singleEmbedder has no batch API.
type singleEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *singleEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	s.calls++
	return domain.EmbeddingResult{Embedding: s.vectors[text]}, nil
}

var errProvider = errors.New("provider down")

func newHit(t *testing.T, id, original string, lexical float64) hit.Hit {
	t.Helper()
	d, err := domdoc.New(id, "E_"+id, "", "normalized "+id, original, domdoc.Violation, nil)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return hit.New(d, lexical)
}
