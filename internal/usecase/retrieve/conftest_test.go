package retrieve

import (
	"testing"

	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/index/bm25"
)

// fakeCollection is an in-memory Collection backed by a real BM25 index.
type fakeCollection struct {
	source domdoc.Source
	docs   []domdoc.Document
	index  *bm25.Index
	calls  int
}

func newFakeCollection(t *testing.T, source domdoc.Source, rows ...[2]string) *fakeCollection {
	t.Helper()
	c := &fakeCollection{source: source}
	texts := make([]string, 0, len(rows))
	for i, r := range rows {
		d, err := domdoc.New(string(source)+"_"+string(rune('a'+i)), r[0], "", r[1], r[1], source, nil)
		if err != nil {
			t.Fatalf("new document: %v", err)
		}
		c.docs = append(c.docs, d)
		texts = append(texts, r[1])
	}
	c.index = bm25.New(texts, bm25.DefaultParams())
	return c
}

func (c *fakeCollection) Source() domdoc.Source          { return c.source }
func (c *fakeCollection) Document(i int) domdoc.Document { return c.docs[i] }

func (c *fakeCollection) Score(queryTokens []string) []float64 {
	c.calls++
	return c.index.Score(queryTokens)
}

// fixedCollection returns preset scores.
type fixedCollection struct {
	source domdoc.Source
	docs   []domdoc.Document
	scores []float64
}

func newFixedCollection(t *testing.T, source domdoc.Source, scores ...float64) *fixedCollection {
	t.Helper()
	c := &fixedCollection{source: source, scores: scores}
	for i := range scores {
		d, err := domdoc.New(string(source)+"_"+string(rune('a'+i)), "E", "", "x", "x", source, nil)
		if err != nil {
			t.Fatalf("new document: %v", err)
		}
		c.docs = append(c.docs, d)
	}
	return c
}

func (c *fixedCollection) Source() domdoc.Source          { return c.source }
func (c *fixedCollection) Document(i int) domdoc.Document { return c.docs[i] }
func (c *fixedCollection) Score([]string) []float64       { return c.scores }
