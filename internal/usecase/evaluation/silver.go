package evaluation

import (
	"slices"

	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/domain/text"
)

// DefaultLabelCap is the maximum number of relevant IDs kept per silver label.
const DefaultLabelCap = 50

// DefaultQueries covers pests, temperature, contamination/hygiene and general safety topics.
var DefaultQueries = []string{
	// pests
	"rat sighting", "mice in kitchen", "roaches everywhere", "cockroach infestation",
	"vermin problem", "fly infestation", "bugs in food", "rodent droppings", "mouse trap", "pests",
	// temperature
	"cold food", "warm sushi", "refrigerator broken", "food not hot", "lukewarm chicken",
	"freezer issue", "temperature violation", "improper holding temperature", "unsafe food temp", "cooling",
	// contamination / hygiene
	"hair in food", "dirty hands", "no gloves", "sneezing on food", "raw chicken",
	"undercooked meat", "cross contamination", "dirty bathroom", "filthy kitchen", "moldy food",
	"unwashed produce", "bare hand contact", "sanitizer missing", "soap empty", "dirty plates",
	// general
	"health hazard", "sanitary violation", "grade pending", "shut down by health department", "food poisoning",
	"sick waiter", "coughing staff", "hygiene issues", "dirty floors", "garbage piling up",
	"bad smell", "sewage odor", "plumbing issues", "water leak", "no hot water",
}

// GenerateSilverLabels derives relevance judgments by keyword matching: an establishment is
// relevant when its documents together contain every query token. When no establishment
// matches all tokens, any token suffices. IDs are sorted and capped at limit (<= 0 means
// DefaultLabelCap). Queries with no relevant establishment are omitted.
func GenerateSilverLabels(docs []domdoc.Document, queries []string, limit int) []LabeledQuery {
	if limit <= 0 {
		limit = DefaultLabelCap
	}

	index := make(map[string]map[string]struct{})
	for _, d := range docs {
		for _, tok := range text.Tokenize(d.Text()) {
			set, ok := index[tok]
			if !ok {
				set = make(map[string]struct{})
				index[tok] = set
			}
			set[d.EstablishmentID()] = struct{}{}
		}
	}

	labels := make([]LabeledQuery, 0, len(queries))
	for _, q := range queries {
		tokens := text.Tokenize(q)
		ids := matchAll(index, tokens)
		if len(ids) == 0 {
			ids = matchAny(index, tokens)
		}
		if len(ids) == 0 {
			continue
		}

		relevant := make([]string, 0, len(ids))
		for id := range ids {
			relevant = append(relevant, id)
		}
		slices.Sort(relevant)
		if len(relevant) > limit {
			relevant = relevant[:limit]
		}
		labels = append(labels, LabeledQuery{Query: q, Relevant: relevant})
	}
	return labels
}

func matchAll(index map[string]map[string]struct{}, tokens []string) map[string]struct{} {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]struct{})
	for id := range index[tokens[0]] {
		out[id] = struct{}{}
	}
	for _, tok := range tokens[1:] {
		set := index[tok]
		for id := range out {
			if _, ok := set[id]; !ok {
				delete(out, id)
			}
		}
	}
	return out
}

func matchAny(index map[string]map[string]struct{}, tokens []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range tokens {
		for id := range index[tok] {
			out[id] = struct{}{}
		}
	}
	return out
}
