// Package aggregate folds scored hits into per-establishment rankings.
package aggregate

import (
	"sort"

	"github.com/saferbites/saferbites/internal/domain/search/establishment"
	"github.com/saferbites/saferbites/internal/domain/search/hit"
	"github.com/saferbites/saferbites/internal/domain/text"
)

// Service aggregates hits by establishment.
type Service struct {
	booster Booster
}

// New creates an aggregator. A nil booster means NoBoost.
func New(booster Booster) *Service {
	if booster == nil {
		booster = NoBoost{}
	}
	return &Service{booster: booster}
}

// Aggregate folds hits in order. The first hit of an establishment sets its name; each hit
// contributes effective score times boost; evidence keeps fold order. The result is sorted by
// total score descending, ties in first-seen order. Input is not modified.
func (s *Service) Aggregate(hits []hit.Hit, query string) []establishment.Aggregate {
	tokens := text.Tokenize(query)

	index := make(map[string]int)
	var out []establishment.Aggregate
	for _, h := range hits {
		d := h.Document()
		i, ok := index[d.EstablishmentID()]
		if !ok {
			i = len(out)
			index[d.EstablishmentID()] = i
			out = append(out, establishment.Aggregate{ID: d.EstablishmentID(), Name: d.EstablishmentName()})
		}
		out[i].Add(h, h.EffectiveScore()*s.booster.Boost(tokens, h))
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].TotalScore > out[b].TotalScore
	})
	return out
}
