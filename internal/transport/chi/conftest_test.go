package chi

import (
	"context"
	"testing"

	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/domain/search/establishment"
	"github.com/saferbites/saferbites/internal/domain/search/hit"
	healthuc "github.com/saferbites/saferbites/internal/usecase/health"
	searchuc "github.com/saferbites/saferbites/internal/usecase/search"
)

type mockSearcher struct {
	res       searchuc.Result
	err       error
	panicMsg  string
	lastQuery string
	lastOpts  searchuc.Options
	calls     int
}

func (m *mockSearcher) Search(_ context.Context, query string, opts searchuc.Options) (searchuc.Result, error) {
	m.calls++
	m.lastQuery = query
	m.lastOpts = opts
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.res, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func testAggregate(t *testing.T) establishment.Aggregate {
	t.Helper()
	v, err := domdoc.New("violation_1", "B1", "Golden Dragon", "raw chicken stored above salad",
		"Raw chicken stored above salad.", domdoc.Violation, []string{"contamination"})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	r, err := domdoc.New("review_1", "B1", "Golden Dragon", "the chicken tasted raw",
		"The chicken tasted raw!", domdoc.Review, nil)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	var a establishment.Aggregate
	a.ID = "B1"
	a.Name = "Golden Dragon"
	a.Add(hit.New(v, 2.0), 2.0)
	a.Add(hit.New(r, 1.0).WithSemantic(0.5), 0.5)
	return a
}
