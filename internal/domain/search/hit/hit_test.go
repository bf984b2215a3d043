package hit

import (
	"testing"

	"github.com/saferbites/saferbites/internal/domain/document"
)

func mustDoc(t *testing.T) document.Document {
	t.Helper()
	d, err := document.New("d1", "E1", "", "dirty", "Dirty.", document.Violation, nil)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return d
}

func TestHit_LexicalOnly(t *testing.T) {
	h := New(mustDoc(t), 2.5)

	if h.LexicalScore() != 2.5 {
		t.Errorf("LexicalScore() = %f", h.LexicalScore())
	}
	if _, ok := h.SemanticScore(); ok {
		t.Error("expected no semantic score")
	}
	if h.EffectiveScore() != 2.5 {
		t.Errorf("EffectiveScore() = %f", h.EffectiveScore())
	}
}

func TestHit_WithSemanticOverridesEffective(t *testing.T) {
	orig := New(mustDoc(t), 2.5)
	h := orig.WithSemantic(0.4)

	if s, ok := h.SemanticScore(); !ok || s != 0.4 {
		t.Errorf("SemanticScore() = %f, %v", s, ok)
	}
	if h.EffectiveScore() != 0.4 {
		t.Errorf("EffectiveScore() = %f", h.EffectiveScore())
	}
	if h.LexicalScore() != 2.5 {
		t.Errorf("lexical score must be retained, got %f", h.LexicalScore())
	}
	if _, ok := orig.SemanticScore(); ok {
		t.Error("WithSemantic must not mutate the original hit")
	}
}

func TestHit_ZeroSemanticIsStillPresent(t *testing.T) {
	h := New(mustDoc(t), 3).WithSemantic(0)
	if h.EffectiveScore() != 0 {
		t.Errorf("EffectiveScore() = %f, want 0", h.EffectiveScore())
	}
}
