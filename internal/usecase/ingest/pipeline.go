// Package ingest turns raw inspection and review tables into processed document collections.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/saferbites/saferbites/internal/domain"
	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/domain/text"
	"github.com/saferbites/saferbites/internal/repository/dataset"
	docrepo "github.com/saferbites/saferbites/internal/repository/document"
)

// DefaultMinSentenceLength drops review fragments shorter than this after normalization.
const DefaultMinSentenceLength = 5

// Config configures a Pipeline.
type Config struct {
	Tagger            *text.Tagger
	TagDelimiter      string
	MinSentenceLength int
	// Seed drives the default SeededAssigner for reviews without an establishment.
	Seed uint64
	// Assigner overrides the seeded assignment when set.
	Assigner Assigner
}

// Paths are the raw inputs and processed outputs of one run.
type Paths struct {
	Inspections   string
	Reviews       string
	ViolationsOut string
	ReviewsOut    string
}

// Stats summarizes one run.
type Stats struct {
	Violations     int
	Reviews        int
	Establishments int
	Skipped        int
}

// Pipeline preprocesses raw tables.
type Pipeline struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a pipeline.
func New(cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.Tagger == nil {
		cfg.Tagger = text.NewTagger(nil)
	}
	if cfg.TagDelimiter == "" {
		cfg.TagDelimiter = ","
	}
	if cfg.MinSentenceLength <= 0 {
		cfg.MinSentenceLength = DefaultMinSentenceLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run processes inspections, then reviews, and writes both collections.
// Missing inspections abort the run; missing reviews are logged and skipped.
func (p *Pipeline) Run(ctx context.Context, paths Paths) (Stats, error) {
	var stats Stats

	inspections, err := dataset.ReadFile(paths.Inspections)
	if err != nil {
		return stats, fmt.Errorf("read inspections: %w", err)
	}
	violations, ids, skipped, err := p.ProcessInspections(inspections)
	if err != nil {
		return stats, err
	}
	if err := docrepo.Save(paths.ViolationsOut, violations, p.cfg.TagDelimiter); err != nil {
		return stats, err
	}
	stats.Violations = len(violations)
	stats.Establishments = len(ids)
	stats.Skipped = skipped
	p.logger.Info("violations processed",
		zap.Int("documents", stats.Violations),
		zap.Int("establishments", stats.Establishments),
		zap.String("out", paths.ViolationsOut))

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("ingest: %w", err)
	}

	reviews, err := dataset.ReadFile(paths.Reviews)
	if err != nil {
		if errors.Is(err, domain.ErrMissingData) {
			p.logger.Warn("reviews missing, skipping", zap.String("path", paths.Reviews), zap.Error(err))
			return stats, nil
		}
		return stats, fmt.Errorf("read reviews: %w", err)
	}

	assigner := p.cfg.Assigner
	if assigner == nil {
		assigner = NewSeededAssigner(p.cfg.Seed, ids)
	}
	docs, err := p.ProcessReviews(reviews, assigner)
	if err != nil {
		return stats, err
	}
	if err := docrepo.Save(paths.ReviewsOut, docs, p.cfg.TagDelimiter); err != nil {
		return stats, err
	}
	stats.Reviews = len(docs)
	p.logger.Info("review sentences processed",
		zap.Int("documents", stats.Reviews), zap.String("out", paths.ReviewsOut))
	return stats, nil
}

// ProcessInspections builds one violation document per row with a description. It also
// returns the distinct establishment IDs in first-seen order and the number of skipped rows.
// Document IDs are insp_<row> with row the 0-based data row of the raw table.
func (p *Pipeline) ProcessInspections(t dataset.Table) ([]domdoc.Document, []string, int, error) {
	b, err := InspectionSchema().Bind(t)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("process inspections: %w", err)
	}

	docs := make([]domdoc.Document, 0, t.Len())
	seen := make(map[string]struct{})
	var ids []string
	var skipped int
	for i, row := range t.Rows {
		original := strings.TrimSpace(b.Get(row, FieldDescription))
		if original == "" {
			continue
		}
		camis := strings.TrimSpace(b.Get(row, FieldCamis))
		clean := text.Normalize(original)

		d, err := domdoc.New("insp_"+strconv.Itoa(i), camis, strings.TrimSpace(b.Get(row, FieldDBA)),
			clean, original, domdoc.Violation, p.cfg.Tagger.Tag(clean))
		if err != nil {
			skipped++
			p.logger.Debug("skipping inspection row", zap.Int("row", i), zap.Error(err))
			continue
		}
		docs = append(docs, d)

		if _, ok := seen[camis]; !ok {
			seen[camis] = struct{}{}
			ids = append(ids, camis)
		}
	}
	return docs, ids, skipped, nil
}

// ProcessReviews splits each review into sentences and keeps the tagged ones that are long
// enough after normalization. Document IDs are rev_<row>_<sentence>; sentence positions
// count dropped fragments too. Reviews without an establishment column value get one from
// assigner, keyed by row.
func (p *Pipeline) ProcessReviews(t dataset.Table, assigner Assigner) ([]domdoc.Document, error) {
	b, err := ReviewSchema().Bind(t)
	if err != nil {
		return nil, fmt.Errorf("process reviews: %w", err)
	}

	docs := make([]domdoc.Document, 0, t.Len())
	for i, row := range t.Rows {
		estID := strings.TrimSpace(b.Get(row, FieldReviewID))
		if estID == "" {
			estID = assigner.Assign(i)
		}

		for s, sentence := range text.SplitSentences(b.Get(row, FieldReview)) {
			clean := strings.TrimSpace(text.Normalize(sentence))
			if len(clean) < p.cfg.MinSentenceLength {
				continue
			}
			tags := p.cfg.Tagger.Tag(clean)
			if len(tags) == 0 {
				continue
			}
			d, err := domdoc.New(fmt.Sprintf("rev_%d_%d", i, s), estID, domdoc.UnknownName,
				clean, sentence, domdoc.Review, tags)
			if err != nil {
				return nil, fmt.Errorf("process review row %d: %w", i, err)
			}
			docs = append(docs, d)
		}
	}
	return docs, nil
}
