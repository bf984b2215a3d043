package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saferbites/saferbites/internal/domain"
	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/domain/search/hit"
	"github.com/saferbites/saferbites/internal/usecase/aggregate"
)

func dirtyGroups(t *testing.T) [][]hit.Hit {
	return [][]hit.Hit{
		{newHit(t, "v1", "A", domdoc.Violation, 2), newHit(t, "v2", "B", domdoc.Violation, 1.5)},
		{newHit(t, "r1", "A", domdoc.Review, 1)},
	}
}

func TestSearch_LexicalOnly(t *testing.T) {
	ret := &mockRetriever{groups: dirtyGroups(t)}
	svc := New(ret, nil, aggregate.New(nil), Config{})

	res, err := svc.Search(context.Background(), "  dirty ", Options{TopK: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Query != "dirty" || res.Candidates != 3 || res.Reranked || res.Degraded {
		t.Errorf("unexpected result header: %+v", res)
	}
	if ret.lastTop != 7 {
		t.Errorf("top_k not forwarded, got %d", ret.lastTop)
	}
	if len(res.Establishments) != 2 || res.Establishments[0].ID != "A" || res.Establishments[0].TotalScore != 3 {
		t.Errorf("unexpected establishments: %+v", res.Establishments)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	ret := &mockRetriever{}
	_, err := New(ret, nil, aggregate.New(nil), Config{}).Search(context.Background(), "   ", Options{})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if ret.calls != 0 {
		t.Error("retriever must not run for a blank query")
	}
}

func TestSearch_NoMatches(t *testing.T) {
	rr := &mockReranker{enabled: true}
	svc := New(&mockRetriever{groups: [][]hit.Hit{nil, nil}}, rr, aggregate.New(nil), Config{})

	res, err := svc.Search(context.Background(), "xyzzy", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Establishments) != 0 || res.Degraded {
		t.Errorf("expected empty, non-degraded result: %+v", res)
	}
	if rr.calls != 0 {
		t.Error("reranker must not run without candidates")
	}
}

func TestSearch_Reranked(t *testing.T) {
	rr := &mockReranker{enabled: true, scores: map[string]float64{"v1": 0.1, "v2": 0.9, "r1": 0.2}}
	svc := New(&mockRetriever{groups: dirtyGroups(t)}, rr, aggregate.New(nil), Config{})

	res, err := svc.Search(context.Background(), "dirty", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Reranked {
		t.Error("expected reranked result")
	}
	if res.Establishments[0].ID != "B" {
		t.Errorf("semantic scores should drive aggregation, got %s first", res.Establishments[0].ID)
	}
}

func TestSearch_RerankOverrideOff(t *testing.T) {
	rr := &mockReranker{enabled: true}
	svc := New(&mockRetriever{groups: dirtyGroups(t)}, rr, aggregate.New(nil), Config{})

	res, err := svc.Search(context.Background(), "dirty", Options{Rerank: boolPtr(false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rr.calls != 0 || res.Reranked {
		t.Error("per-query override must skip reranking")
	}
}

func TestSearch_RerankFallback(t *testing.T) {
	rr := &mockReranker{enabled: true, err: errors.New("timeout")}
	svc := New(&mockRetriever{groups: dirtyGroups(t)}, rr, aggregate.New(nil), Config{})

	res, err := svc.Search(context.Background(), "dirty", Options{})
	if err != nil {
		t.Fatalf("fallback policy must not fail the query: %v", err)
	}
	if !res.Degraded || res.Warning != DegradedWarning || res.Reranked {
		t.Errorf("expected degraded result, got %+v", res)
	}
	if res.Establishments[0].ID != "A" || res.Establishments[0].TotalScore != 3 {
		t.Errorf("expected lexical aggregation, got %+v", res.Establishments[0])
	}
}

func TestSearch_RerankFailPolicy(t *testing.T) {
	rr := &mockReranker{enabled: true, err: errors.New("timeout")}
	svc := New(&mockRetriever{groups: dirtyGroups(t)}, rr, aggregate.New(nil), Config{OnRerankFailure: FailQuery})

	_, err := svc.Search(context.Background(), "dirty", Options{})
	if !errors.Is(err, domain.ErrRerankUnavailable) {
		t.Fatalf("expected ErrRerankUnavailable, got %v", err)
	}
}

func TestSearch_RetrieveError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(&mockRetriever{err: boom}, nil, aggregate.New(nil), Config{}).
		Search(context.Background(), "dirty", Options{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected retrieval error, got %v", err)
	}
}

func TestSearch_QueryTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(&mockRetriever{groups: dirtyGroups(t)}, nil, aggregate.New(nil), Config{QueryTimeout: time.Second})
	_, err := svc.Search(ctx, "dirty", Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestSearch_LimitAndEvidenceCap(t *testing.T) {
	svc := New(&mockRetriever{groups: dirtyGroups(t)}, nil, aggregate.New(nil), Config{})

	res, err := svc.Search(context.Background(), "dirty", Options{Limit: 1, MaxEvidence: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Establishments) != 1 {
		t.Fatalf("expected 1 establishment, got %d", len(res.Establishments))
	}
	a := res.Establishments[0]
	if len(a.Evidence) != 1 || a.TotalScore != 3 {
		t.Errorf("evidence cap must not change the total: %d evidence, total %f", len(a.Evidence), a.TotalScore)
	}
	if a.EvidenceCount != 2 || !a.Truncated() {
		t.Errorf("capped aggregate must report its full evidence count: count=%d truncated=%v",
			a.EvidenceCount, a.Truncated())
	}

	full, err := svc.Search(context.Background(), "dirty", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range full.Establishments {
		var sum float64
		for _, ev := range a.Evidence {
			sum += ev.Score
		}
		if a.Truncated() || sum != a.TotalScore {
			t.Errorf("%s: uncapped evidence must sum to total: sum=%f total=%f", a.ID, sum, a.TotalScore)
		}
	}
}

func TestSearch_MergeStrategyApplied(t *testing.T) {
	groups := [][]hit.Hit{
		{newHit(t, "v1", "A", domdoc.Violation, 1)},
		{newHit(t, "r1", "B", domdoc.Review, 1)},
	}
	svc := New(&mockRetriever{groups: groups}, nil, aggregate.New(nil), Config{Merge: MergeScore})
	res, err := svc.Search(context.Background(), "q", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Establishments[0].ID != "A" {
		t.Errorf("equal scores must keep collection order, got %s", res.Establishments[0].ID)
	}
}

func TestParseFailurePolicy(t *testing.T) {
	if p, err := ParseFailurePolicy(""); err != nil || p != FallbackLexical {
		t.Errorf("empty policy: %q, %v", p, err)
	}
	if p, err := ParseFailurePolicy("fail"); err != nil || p != FailQuery {
		t.Errorf("fail policy: %q, %v", p, err)
	}
	if _, err := ParseFailurePolicy("retry"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
