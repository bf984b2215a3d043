// Package bm25 implements an immutable Okapi BM25 index over one document collection.
package bm25

import (
	"math"

	"github.com/saferbites/saferbites/internal/domain/text"
)

// Default Okapi parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Params controls term-frequency saturation (K1) and length normalization (B).
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams returns the standard parameters.
func DefaultParams() Params {
	return Params{K1: DefaultK1, B: DefaultB}
}

type posting struct {
	doc int
	tf  int
}

// Index is built once and is safe for concurrent reads.
type Index struct {
	params        Params
	lengths       []int
	averageLength float64
	postings      map[string][]posting
	idf           map[string]float64
}

// New builds an index over texts. Document i of the index is texts[i].
// An empty collection yields an index that scores nothing.
func New(texts []string, params Params) *Index {
	if params.K1 <= 0 {
		params.K1 = DefaultK1
	}
	if params.B < 0 || params.B > 1 {
		params.B = DefaultB
	}

	idx := &Index{
		params:   params,
		lengths:  make([]int, len(texts)),
		postings: make(map[string][]posting),
		idf:      make(map[string]float64),
	}

	var total int
	for i, t := range texts {
		tokens := text.Tokenize(t)
		idx.lengths[i] = len(tokens)
		total += len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term, n := range tf {
			idx.postings[term] = append(idx.postings[term], posting{doc: i, tf: n})
		}
	}
	if len(texts) > 0 {
		idx.averageLength = float64(total) / float64(len(texts))
	}

	// ln(1 + (N-n+0.5)/(n+0.5)) stays positive even when a term is in every document.
	n := float64(len(texts))
	for term, list := range idx.postings {
		df := float64(len(list))
		idx.idf[term] = math.Log(1 + (n-df+0.5)/(df+0.5))
	}

	return idx
}

// Len returns the number of indexed documents.
func (i *Index) Len() int { return len(i.lengths) }

// AverageLength returns the mean document length in tokens.
func (i *Index) AverageLength() float64 { return i.averageLength }

// IDF returns the inverse document frequency of term, 0 if the term is absent.
func (i *Index) IDF(term string) float64 { return i.idf[term] }

// Score returns one score per indexed document. Each query token contributes once per
// occurrence; tokens absent from the collection contribute nothing.
func (i *Index) Score(queryTokens []string) []float64 {
	scores := make([]float64, len(i.lengths))
	for _, term := range queryTokens {
		list, ok := i.postings[term]
		if !ok {
			continue
		}
		idf := i.idf[term]
		for _, p := range list {
			scores[p.doc] += idf * i.saturate(float64(p.tf), float64(i.lengths[p.doc]))
		}
	}
	return scores
}

func (i *Index) saturate(tf, docLength float64) float64 {
	norm := 1.0
	if i.averageLength > 0 {
		norm = 1 - i.params.B + i.params.B*docLength/i.averageLength
	}
	return tf * (i.params.K1 + 1) / (tf + i.params.K1*norm)
}
