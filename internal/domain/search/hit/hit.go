package hit

import "github.com/saferbites/saferbites/internal/domain/document"

// Hit is a document scored against one query. Query-scoped, never persisted.
type Hit struct {
	doc         document.Document
	lexical     float64
	semantic    float64
	hasSemantic bool
}

// New creates a hit carrying only a lexical score.
func New(doc document.Document, lexicalScore float64) Hit {
	return Hit{doc: doc, lexical: lexicalScore}
}

// WithSemantic returns a copy of h carrying a semantic score.
func (h Hit) WithSemantic(score float64) Hit {
	h.semantic = score
	h.hasSemantic = true
	return h
}

// Document returns the scored document.
func (h Hit) Document() document.Document { return h.doc }

// LexicalScore returns the lexical relevance score.
func (h Hit) LexicalScore() float64 { return h.lexical }

// SemanticScore returns the semantic score and whether reranking produced one.
func (h Hit) SemanticScore() (float64, bool) { return h.semantic, h.hasSemantic }

// EffectiveScore is the semantic score when present, the lexical score otherwise.
func (h Hit) EffectiveScore() float64 {
	if h.hasSemantic {
		return h.semantic
	}
	return h.lexical
}
