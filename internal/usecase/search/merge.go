package search

import (
	"fmt"
	"sort"

	"github.com/saferbites/saferbites/internal/domain/search/hit"
)

// MergeStrategy decides how per-collection candidate lists become one list.
type MergeStrategy string

// Merge strategies.
const (
	// MergeConcat keeps collection order: every violation hit, then every review hit.
	MergeConcat MergeStrategy = "concat"
	// MergeScore orders all hits by lexical score; ties keep collection order.
	MergeScore MergeStrategy = "score"
	// MergeRRF interleaves collections by reciprocal rank.
	MergeRRF MergeStrategy = "rrf"
)

// ParseMergeStrategy validates a configured strategy. Empty means MergeConcat.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch m := MergeStrategy(s); m {
	case "":
		return MergeConcat, nil
	case MergeConcat, MergeScore, MergeRRF:
		return m, nil
	default:
		return "", fmt.Errorf("unknown merge strategy %q", s)
	}
}

// rrfK is the Reciprocal Rank Fusion constant (Cormack et al. 2009).
const rrfK = 60

func merge(strategy MergeStrategy, groups [][]hit.Hit) []hit.Hit {
	var flat []hit.Hit
	for _, g := range groups {
		flat = append(flat, g...)
	}

	switch strategy {
	case MergeScore:
		sort.SliceStable(flat, func(i, j int) bool {
			return flat[i].LexicalScore() > flat[j].LexicalScore()
		})
		return flat
	case MergeRRF:
		return fuseRRF(groups)
	default:
		return flat
	}
}

// fuseRRF orders hits by score(d) = sum of 1/(k + rank_i(d)) over the lists containing d.
// A document present in several lists is kept once, as first seen. Equal fused scores keep
// collection order, so lists interleave rank by rank.
func fuseRRF(groups [][]hit.Hit) []hit.Hit {
	type scored struct {
		h     hit.Hit
		score float64
	}

	index := make(map[string]int)
	var fused []scored
	for _, g := range groups {
		for rank, h := range g {
			s := 1.0 / float64(rrfK+rank+1)
			if i, ok := index[h.Document().ID()]; ok {
				fused[i].score += s
				continue
			}
			index[h.Document().ID()] = len(fused)
			fused = append(fused, scored{h: h, score: s})
		}
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].score > fused[j].score
	})

	out := make([]hit.Hit, len(fused))
	for i, f := range fused {
		out[i] = f.h
	}
	return out
}
