package search

import (
	"slices"
	"testing"

	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/domain/search/hit"
)

func mergeFixture(t *testing.T) [][]hit.Hit {
	return [][]hit.Hit{
		{
			newHit(t, "v1", "A", domdoc.Violation, 3),
			newHit(t, "v2", "B", domdoc.Violation, 1),
		},
		{
			newHit(t, "r1", "A", domdoc.Review, 5),
			newHit(t, "r2", "C", domdoc.Review, 1),
		},
	}
}

func TestMerge_Concat(t *testing.T) {
	got := ids(merge(MergeConcat, mergeFixture(t)))
	want := []string{"v1", "v2", "r1", "r2"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMerge_Score(t *testing.T) {
	got := ids(merge(MergeScore, mergeFixture(t)))
	want := []string{"r1", "v1", "v2", "r2"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMerge_RRFInterleaves(t *testing.T) {
	got := ids(merge(MergeRRF, mergeFixture(t)))
	want := []string{"v1", "r1", "v2", "r2"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFuseRRF_DuplicateAccumulates(t *testing.T) {
	shared := newHit(t, "x", "A", domdoc.Violation, 1)
	groups := [][]hit.Hit{
		{newHit(t, "a", "A", domdoc.Violation, 2), shared},
		{newHit(t, "b", "B", domdoc.Review, 2), shared},
	}
	got := ids(fuseRRF(groups))
	if len(got) != 3 || got[0] != "x" {
		t.Errorf("expected the shared document once and first, got %v", got)
	}
}

func TestMerge_PreservesLexicalScores(t *testing.T) {
	for _, h := range merge(MergeRRF, mergeFixture(t)) {
		if h.LexicalScore() < 1 {
			t.Errorf("merge must not rewrite lexical scores, got %f", h.LexicalScore())
		}
	}
}

func TestParseMergeStrategy(t *testing.T) {
	for in, want := range map[string]MergeStrategy{"": MergeConcat, "score": MergeScore, "rrf": MergeRRF} {
		got, err := ParseMergeStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseMergeStrategy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMergeStrategy("best"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
