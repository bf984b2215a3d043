// Package evaluation measures ranking quality of the search pipeline against labeled queries.
package evaluation

import "math"

// DefaultK is the rank cutoff used by the harness and the baseline.
const DefaultK = 10

// Metrics are the ranking quality scores of one query at cutoff K.
type Metrics struct {
	Precision float64 // relevant in top K / K
	Recall    float64 // relevant in top K / |relevant|, relative to the label set
	NDCG      float64
}

// Compute scores a ranked list of establishment IDs against a relevance set.
// Gains are binary. The ideal ordering is built from the labels of the same top K,
// so NDCG measures ordering within what was retrieved. A list shorter than K is
// padded with non-relevant entries.
func Compute(retrieved []string, relevant map[string]struct{}, k int) Metrics {
	if k <= 0 {
		return Metrics{}
	}
	if len(retrieved) > k {
		retrieved = retrieved[:k]
	}

	var hits int
	var dcg float64
	for i, id := range retrieved {
		if _, ok := relevant[id]; ok {
			hits++
			dcg += discount(i)
		}
	}

	m := Metrics{Precision: float64(hits) / float64(k)}
	if len(relevant) > 0 {
		m.Recall = float64(hits) / float64(len(relevant))
	}

	var idcg float64
	for i := range hits {
		idcg += discount(i)
	}
	if idcg > 0 {
		m.NDCG = dcg / idcg
	}
	return m
}

func discount(rank int) float64 {
	return 1 / math.Log2(float64(rank)+2)
}

// Set builds a relevance set from IDs.
func Set(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}
