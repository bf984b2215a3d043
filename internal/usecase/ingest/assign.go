package ingest

import "math/rand/v2"

// NoEstablishmentID is assigned when no establishment IDs are known.
const NoEstablishmentID = "00000000"

// Assigner maps the index of an unlabeled review to an establishment ID.
type Assigner interface {
	Assign(index int) string
}

// AssignerFunc adapts a function to Assigner.
type AssignerFunc func(index int) string

// Assign implements Assigner.
func (f AssignerFunc) Assign(index int) string { return f(index) }

// SeededAssigner picks an establishment pseudo-randomly as a pure function of (seed, index).
// Reruns with the same seed and IDs give the same assignment.
type SeededAssigner struct {
	seed uint64
	ids  []string
}

// NewSeededAssigner creates a SeededAssigner over ids. The slice is copied.
func NewSeededAssigner(seed uint64, ids []string) *SeededAssigner {
	return &SeededAssigner{seed: seed, ids: append([]string(nil), ids...)}
}

// Assign implements Assigner.
func (a *SeededAssigner) Assign(index int) string {
	if len(a.ids) == 0 {
		return NoEstablishmentID
	}
	r := rand.New(rand.NewPCG(a.seed, uint64(index)))
	return a.ids[r.IntN(len(a.ids))]
}
