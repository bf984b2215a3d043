package evaluation

import (
	"context"
	"testing"

	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/domain/search/establishment"
	searchuc "github.com/saferbites/saferbites/internal/usecase/search"
)

// mockSearcher answers each query with a fixed ranked list of establishment IDs.
type mockSearcher struct {
	ranked map[string][]string
	err    error
	opts   []searchuc.Options
}

func (m *mockSearcher) Search(_ context.Context, query string, opts searchuc.Options) (searchuc.Result, error) {
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return searchuc.Result{}, m.err
	}
	ids := m.ranked[query]
	res := searchuc.Result{Query: query, Establishments: make([]establishment.Aggregate, len(ids))}
	for i, id := range ids {
		res.Establishments[i] = establishment.Aggregate{ID: id, Name: id}
	}
	return res, nil
}

func newDoc(t *testing.T, id, est, text string) domdoc.Document {
	t.Helper()
	d, err := domdoc.New(id, est, "", text, text, domdoc.Violation, nil)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return d
}

func approx(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	return d < eps && d > -eps
}
