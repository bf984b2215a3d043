package domain

import (
	"context"
	"errors"
	"math"
	"testing"
)

type stubEmbedder struct {
	vecs  map[string][]float32
	err   error
	calls int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.calls++
	if s.err != nil {
		return EmbeddingResult{}, s.err
	}
	return EmbeddingResult{Embedding: s.vecs[text], PromptTokens: 1, TotalTokens: 1}, nil
}

type stubBatchEmbedder struct {
	stubEmbedder
	batchCalls int
}

func (s *stubBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	s.batchCalls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vecs[t]
	}
	return BatchEmbeddingResult{Embeddings: out, TotalTokens: len(texts)}, nil
}

func TestBatchFallback_CallsEmbedPerText(t *testing.T) {
	inner := &stubEmbedder{vecs: map[string][]float32{"a": {1}, "b": {2}}}

	res, err := BatchFallback(context.Background(), inner, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 Embed calls, got %d", inner.calls)
	}
	if res.TotalTokens != 2 || res.PromptTokens != 2 {
		t.Errorf("unexpected token totals: %+v", res)
	}
	if res.Embeddings[1][0] != 2 {
		t.Errorf("unexpected order: %v", res.Embeddings)
	}
}

func TestBatchFallback_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubEmbedder{err: innerErr}

	_, err := BatchFallback(context.Background(), inner, []string{"a"})
	if !errors.Is(err, innerErr) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
}

func TestEmbedAll_PrefersNativeBatch(t *testing.T) {
	inner := &stubBatchEmbedder{stubEmbedder: stubEmbedder{vecs: map[string][]float32{"a": {1}}}}

	if _, err := EmbedAll(context.Background(), inner, []string{"a", "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 1 {
		t.Errorf("expected 1 batch call, got %d", inner.batchCalls)
	}
	if inner.calls != 0 {
		t.Errorf("expected no single Embed calls, got %d", inner.calls)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CosineSimilarity(tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("CosineSimilarity = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	if _, err := CosineSimilarity([]float32{1}, []float32{1, 2}); err == nil {
		t.Fatal("expected error for mismatched dimensions")
	}
}

func TestCosineSimilarity_NonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	tests := map[string][2][]float32{
		"nan in a":  {{nan, 1}, {1, 1}},
		"nan in b":  {{1, 1}, {1, nan}},
		"inf in a":  {{inf, 0}, {1, 0}},
		"-inf in b": {{1, 0}, {float32(math.Inf(-1)), 0}},
	}
	for name, v := range tests {
		t.Run(name, func(t *testing.T) {
			if sim, err := CosineSimilarity(v[0], v[1]); err == nil {
				t.Fatalf("expected error, got %v", sim)
			}
		})
	}
}

func TestSchemaMismatchError_Unwrap(t *testing.T) {
	err := NewSchemaMismatch("violations.csv", "doc_id", []string{"doc_id", "id"})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	var sm *SchemaMismatchError
	if !errors.As(err, &sm) || sm.Field != "doc_id" {
		t.Errorf("expected SchemaMismatchError for doc_id, got %v", err)
	}
}
