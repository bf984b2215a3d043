package evaluation

import (
	"fmt"
	"strings"

	"github.com/saferbites/saferbites/internal/repository/dataset"
)

// Label file columns.
const (
	ColumnQuery    = "query"
	ColumnRelevant = "relevant_business_ids"
)

var labelSchema = dataset.Schema{
	{Name: ColumnQuery, Aliases: []string{ColumnQuery}, Required: true},
	{Name: ColumnRelevant, Aliases: []string{ColumnRelevant, "relevant_ids"}, Required: true},
}

// LabeledQuery is a query with the establishment IDs judged relevant to it.
type LabeledQuery struct {
	Query    string
	Relevant []string
}

// ReadLabels loads a label file: query plus space-separated relevant establishment IDs.
// Rows with a blank query are skipped.
func ReadLabels(path string) ([]LabeledQuery, error) {
	t, err := dataset.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	b, err := labelSchema.Bind(t)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}

	labels := make([]LabeledQuery, 0, t.Len())
	for _, row := range t.Rows {
		q := strings.TrimSpace(b.Get(row, ColumnQuery))
		if q == "" {
			continue
		}
		labels = append(labels, LabeledQuery{
			Query:    q,
			Relevant: strings.Fields(b.Get(row, ColumnRelevant)),
		})
	}
	return labels, nil
}

// WriteLabels saves labels in the format ReadLabels reads.
func WriteLabels(path string, labels []LabeledQuery) error {
	rows := make([][]string, len(labels))
	for i, l := range labels {
		rows[i] = []string{l.Query, strings.Join(l.Relevant, " ")}
	}
	if err := dataset.WriteCSV(path, []string{ColumnQuery, ColumnRelevant}, rows); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}
	return nil
}
