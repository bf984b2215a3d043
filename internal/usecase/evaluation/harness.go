package evaluation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	searchuc "github.com/saferbites/saferbites/internal/usecase/search"
)

// Row is the outcome of one labeled query.
type Row struct {
	Query     string
	Retrieved []string
	Relevant  int
	Metrics   Metrics
	Degraded  bool
}

// Report is the outcome of a harness run.
type Report struct {
	K             int
	Rows          []Row
	MeanPrecision float64
	MeanRecall    float64
	MeanNDCG      float64
}

// Harness drives the search pipeline over labeled queries.
type Harness struct {
	searcher Searcher
	opts     searchuc.Options
	logger   *zap.Logger
}

// NewHarness creates a harness. opts apply to every query.
func NewHarness(searcher Searcher, opts searchuc.Options, logger *zap.Logger) *Harness {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{searcher: searcher, opts: opts, logger: logger}
}

// Run evaluates every labeled query at cutoff k (<= 0 means DefaultK).
// A search error aborts the run.
func (h *Harness) Run(ctx context.Context, labeled []LabeledQuery, k int) (Report, error) {
	if k <= 0 {
		k = DefaultK
	}
	report := Report{K: k, Rows: make([]Row, 0, len(labeled))}

	for _, lq := range labeled {
		res, err := h.searcher.Search(ctx, lq.Query, h.opts)
		if err != nil {
			return Report{}, fmt.Errorf("evaluate %q: %w", lq.Query, err)
		}

		retrieved := make([]string, len(res.Establishments))
		for i, a := range res.Establishments {
			retrieved[i] = a.ID
		}
		row := Row{
			Query:     lq.Query,
			Retrieved: retrieved,
			Relevant:  len(lq.Relevant),
			Metrics:   Compute(retrieved, Set(lq.Relevant), k),
			Degraded:  res.Degraded,
		}
		report.Rows = append(report.Rows, row)

		h.logger.Debug("evaluated query",
			zap.String("query", lq.Query),
			zap.Float64("precision", row.Metrics.Precision),
			zap.Float64("ndcg", row.Metrics.NDCG),
			zap.Bool("degraded", row.Degraded),
		)
	}

	report.summarize()
	return report, nil
}

func (r *Report) summarize() {
	if len(r.Rows) == 0 {
		return
	}
	var p, rc, n float64
	for _, row := range r.Rows {
		p += row.Metrics.Precision
		rc += row.Metrics.Recall
		n += row.Metrics.NDCG
	}
	count := float64(len(r.Rows))
	r.MeanPrecision = p / count
	r.MeanRecall = rc / count
	r.MeanNDCG = n / count
}
