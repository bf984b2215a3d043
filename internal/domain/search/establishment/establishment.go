package establishment

import "github.com/saferbites/saferbites/internal/domain/search/hit"

// Evidence is a hit folded into an establishment together with the score it contributed.
type Evidence struct {
	Hit   hit.Hit
	Score float64
}

// Aggregate is the establishment-level ranking record for one query.
// TotalScore is the sum over all EvidenceCount folded hits, even when Evidence
// has been capped for presentation.
type Aggregate struct {
	ID            string
	Name          string
	TotalScore    float64
	Evidence      []Evidence
	EvidenceCount int
}

// Add folds one hit into the aggregate.
func (a *Aggregate) Add(h hit.Hit, contribution float64) {
	a.TotalScore += contribution
	a.Evidence = append(a.Evidence, Evidence{Hit: h, Score: contribution})
	a.EvidenceCount++
}

// Truncated reports whether Evidence lists fewer hits than were folded.
func (a Aggregate) Truncated() bool {
	return len(a.Evidence) < a.EvidenceCount
}
