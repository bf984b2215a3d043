// Package document loads the violation and review collections and their lexical indexes.
package document

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/saferbites/saferbites/internal/domain"
	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/index/bm25"
	"github.com/saferbites/saferbites/internal/repository/dataset"
)

// Collection is one source's documents plus the BM25 index built over their normalized text.
// Document i of the collection is document i of the index.
type Collection struct {
	source domdoc.Source
	docs   []domdoc.Document
	index  *bm25.Index
}

// NewCollection indexes docs. The slice is copied.
func NewCollection(source domdoc.Source, docs []domdoc.Document, params bm25.Params) *Collection {
	owned := make([]domdoc.Document, len(docs))
	copy(owned, docs)

	texts := make([]string, len(owned))
	for i, d := range owned {
		texts[i] = d.Text()
	}
	return &Collection{source: source, docs: owned, index: bm25.New(texts, params)}
}

// Source returns the collection source.
func (c *Collection) Source() domdoc.Source { return c.source }

// Len returns the number of documents.
func (c *Collection) Len() int { return len(c.docs) }

// Document returns document i.
func (c *Collection) Document(i int) domdoc.Document { return c.docs[i] }

// Documents returns a copy of all documents in load order.
func (c *Collection) Documents() []domdoc.Document {
	out := make([]domdoc.Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Index returns the collection's lexical index.
func (c *Collection) Index() *bm25.Index { return c.index }

// Score returns one BM25 score per document for the query tokens.
func (c *Collection) Score(queryTokens []string) []float64 { return c.index.Score(queryTokens) }

// Store holds both collections, read-only after construction.
type Store struct {
	violations *Collection
	reviews    *Collection
}

// NewStore builds a store from in-memory documents.
func NewStore(violations, reviews []domdoc.Document, params bm25.Params) *Store {
	return &Store{
		violations: NewCollection(domdoc.Violation, violations, params),
		reviews:    NewCollection(domdoc.Review, reviews, params),
	}
}

// Violations returns the inspection violation collection.
func (s *Store) Violations() *Collection { return s.violations }

// Reviews returns the review sentence collection.
func (s *Store) Reviews() *Collection { return s.reviews }

// Collections returns the collections in retrieval order: violations, then reviews.
func (s *Store) Collections() []*Collection {
	return []*Collection{s.violations, s.reviews}
}

// Len returns the number of documents across both collections.
func (s *Store) Len() int { return s.violations.Len() + s.reviews.Len() }

// All returns every document across both collections.
func (s *Store) All() []domdoc.Document {
	out := make([]domdoc.Document, 0, s.violations.Len()+s.reviews.Len())
	out = append(out, s.violations.docs...)
	return append(out, s.reviews.docs...)
}

// LoadOptions configures Load.
type LoadOptions struct {
	ViolationsPath string
	ReviewsPath    string
	Schema         dataset.Schema
	TagDelimiter   string
	Params         bm25.Params
}

// Load reads both collections. A missing or empty file is logged and yields an empty
// collection; a schema mismatch is returned as an error.
func Load(opts LoadOptions, log *zap.Logger) (*Store, error) {
	if opts.Schema == nil {
		opts.Schema = DefaultSchema()
	}
	if opts.TagDelimiter == "" {
		opts.TagDelimiter = ","
	}

	violations, err := loadDocuments(opts.ViolationsPath, domdoc.Violation, opts, log)
	if err != nil {
		return nil, err
	}
	reviews, err := loadDocuments(opts.ReviewsPath, domdoc.Review, opts, log)
	if err != nil {
		return nil, err
	}

	s := NewStore(violations, reviews, opts.Params)
	log.Info("document store loaded",
		zap.Int("violations", s.violations.Len()),
		zap.Int("reviews", s.reviews.Len()),
		zap.Float64("violations_avg_len", s.violations.index.AverageLength()),
		zap.Float64("reviews_avg_len", s.reviews.index.AverageLength()),
	)
	return s, nil
}

func loadDocuments(
	path string, source domdoc.Source, opts LoadOptions, log *zap.Logger,
) ([]domdoc.Document, error) {
	if path == "" {
		log.Warn("collection path not configured, using empty collection", zap.String("source", string(source)))
		return nil, nil
	}

	tbl, err := dataset.ReadFile(path)
	if err != nil {
		if errors.Is(err, domain.ErrMissingData) {
			log.Warn("collection data missing, using empty collection",
				zap.String("source", string(source)), zap.String("path", path), zap.Error(err))
			return nil, nil
		}
		return nil, fmt.Errorf("load %s collection: %w", source, err)
	}

	binding, err := opts.Schema.Bind(tbl)
	if err != nil {
		return nil, fmt.Errorf("load %s collection: %w", source, err)
	}

	docs := make([]domdoc.Document, 0, tbl.Len())
	var skipped int
	for i, row := range tbl.Rows {
		d, err := fromRow(binding, row, source, opts.TagDelimiter)
		if err != nil {
			skipped++
			log.Debug("skipping row", zap.String("path", path), zap.Int("row", i), zap.Error(err))
			continue
		}
		docs = append(docs, d)
	}
	if skipped > 0 {
		log.Warn("rows skipped while loading collection",
			zap.String("source", string(source)), zap.Int("skipped", skipped))
	}
	return docs, nil
}

// fromRow maps one bound row onto a Document. A row-level source column wins over the
// collection's source when it holds a valid value.
func fromRow(b dataset.Binding, row []string, source domdoc.Source, tagDelimiter string) (domdoc.Document, error) {
	if s := domdoc.Source(b.Get(row, FieldSource)); s.IsValid() {
		source = s
	}
	text := b.Get(row, FieldText)
	original := b.Get(row, FieldOriginalText)
	if original == "" {
		original = text
	}
	return domdoc.New(
		b.Get(row, FieldDocID),
		b.Get(row, FieldBusinessID),
		b.Get(row, FieldBusinessName),
		text,
		original,
		source,
		domdoc.ParseTags(b.Get(row, FieldTags), tagDelimiter),
	)
}

// Save writes documents as a processed CSV collection.
func Save(path string, docs []domdoc.Document, tagDelimiter string) error {
	rows := make([][]string, len(docs))
	for i, d := range docs {
		rows[i] = Row(d, tagDelimiter)
	}
	if err := dataset.WriteCSV(path, Columns, rows); err != nil {
		return fmt.Errorf("save documents: %w", err)
	}
	return nil
}
