package saferbites

// Evidence is one supporting snippet of an establishment.
type Evidence struct {
	DocID         string   `json:"doc_id"`
	Source        string   `json:"source"` // violation or review
	Text          string   `json:"text"`
	Score         float64  `json:"score"`
	LexicalScore  float64  `json:"lexical_score"`
	SemanticScore *float64 `json:"semantic_score,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// Establishment is one ranked establishment.
type Establishment struct {
	ID         string     `json:"establishment_id"`
	Name       string     `json:"establishment_name"`
	TotalScore float64    `json:"total_score"`
	Evidence   []Evidence `json:"evidence"`

	// EvidenceTotal counts every snippet summed into TotalScore; Evidence may hold fewer.
	EvidenceTotal     int  `json:"evidence_total"`
	EvidenceTruncated bool `json:"evidence_truncated"`
}

// SearchResult is the answer to one query.
type SearchResult struct {
	Query      string          `json:"query"`
	Items      []Establishment `json:"items"`
	Total      int             `json:"total"`
	Candidates int             `json:"candidates"`
	Reranked   bool            `json:"reranked"`
	Degraded   bool            `json:"degraded"`
	Warning    string          `json:"warning,omitempty"`
}

// HealthStatus is the service health report.
type HealthStatus struct {
	Status string            `json:"status"` // ok, degraded, error
	Checks map[string]string `json:"checks"`
}
