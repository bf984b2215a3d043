package retrieve

import (
	domdoc "github.com/saferbites/saferbites/internal/domain/document"
)

// Collection is one indexed document source. Score returns one score per document,
// aligned with Document(i).
type Collection interface {
	Source() domdoc.Source
	Document(i int) domdoc.Document
	Score(queryTokens []string) []float64
}
