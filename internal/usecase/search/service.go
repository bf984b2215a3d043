// Package search runs the query pipeline: retrieve, merge, rerank, aggregate.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/saferbites/saferbites/internal/domain"
	"github.com/saferbites/saferbites/internal/domain/search/establishment"
	"github.com/saferbites/saferbites/internal/domain/search/hit"
	"github.com/saferbites/saferbites/internal/logger"
	"github.com/saferbites/saferbites/internal/metrics"
	"github.com/saferbites/saferbites/internal/tracing"
)

// FailurePolicy decides what a query does when reranking fails.
type FailurePolicy string

// Rerank failure policies.
const (
	// FallbackLexical answers with lexical ordering and marks the result degraded.
	FallbackLexical FailurePolicy = "fallback"
	// FailQuery returns the reranking error.
	FailQuery FailurePolicy = "fail"
)

// ParseFailurePolicy validates a configured policy. Empty means FallbackLexical.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case "":
		return FallbackLexical, nil
	case FallbackLexical, FailQuery:
		return p, nil
	default:
		return "", fmt.Errorf("unknown rerank failure policy %q", s)
	}
}

// DegradedWarning is the user-facing notice for a lexical fallback.
const DegradedWarning = "semantic reranking unavailable, results use keyword ranking only"

// Config configures the pipeline.
type Config struct {
	Merge           MergeStrategy
	OnRerankFailure FailurePolicy
	QueryTimeout    time.Duration
}

// Options are per-query overrides. Zero values use the service defaults.
type Options struct {
	TopK        int
	Rerank      *bool
	Limit       int // max establishments, 0 = all
	MaxEvidence int // max evidence per establishment in the result, 0 = all
}

// Result is one answered query.
type Result struct {
	Query          string
	Establishments []establishment.Aggregate
	Candidates     int
	Reranked       bool
	Degraded       bool
	Warning        string
}

// Service orchestrates a query through the pipeline.
type Service struct {
	retriever  Retriever
	reranker   Reranker
	aggregator Aggregator
	cfg        Config
}

// New creates a search service. reranker may be nil.
func New(retriever Retriever, reranker Reranker, aggregator Aggregator, cfg Config) *Service {
	if cfg.Merge == "" {
		cfg.Merge = MergeConcat
	}
	if cfg.OnRerankFailure == "" {
		cfg.OnRerankFailure = FallbackLexical
	}
	return &Service{retriever: retriever, reranker: reranker, aggregator: aggregator, cfg: cfg}
}

// Search answers a free-text query. A blank query is domain.ErrInvalidQuery; a query
// with no matches returns an empty result without error.
func (s *Service) Search(ctx context.Context, query string, opts Options) (res Result, err error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Result{}, fmt.Errorf("%w: query is empty", domain.ErrInvalidQuery)
	}
	res.Query = q

	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}

	ctx, end := tracing.StartSpan(ctx, "search", attribute.Int("search.query_length", len(q)))
	defer func() {
		end(err)
		metrics.SearchRequestsTotal.WithLabelValues(outcome(res, err)).Inc()
	}()
	log := logger.FromContext(ctx)

	hits, err := s.retrieve(ctx, q, opts.TopK)
	if err != nil {
		return Result{}, err
	}
	res.Candidates = len(hits)
	metrics.SearchCandidates.Observe(float64(len(hits)))

	if s.wantRerank(opts) && len(hits) > 0 {
		reranked, rerr := s.rerank(ctx, q, hits)
		switch {
		case rerr == nil:
			hits = reranked
			res.Reranked = true
		case s.cfg.OnRerankFailure == FailQuery:
			return Result{}, rerr
		default:
			res.Degraded = true
			res.Warning = DegradedWarning
			metrics.RerankFallbackTotal.Inc()
			log.Warn("rerank failed, falling back to lexical ranking", zap.Error(rerr))
		}
	}

	res.Establishments = s.aggregate(ctx, q, hits)
	res.Establishments = truncate(res.Establishments, opts.Limit, opts.MaxEvidence)

	log.Debug("search done",
		zap.Int("candidates", res.Candidates),
		zap.Int("establishments", len(res.Establishments)),
		zap.Bool("reranked", res.Reranked),
		zap.Bool("degraded", res.Degraded),
	)
	return res, nil
}

func (s *Service) wantRerank(opts Options) bool {
	if s.reranker == nil || !s.reranker.Enabled() {
		return false
	}
	return opts.Rerank == nil || *opts.Rerank
}

func (s *Service) retrieve(ctx context.Context, q string, topK int) (hits []hit.Hit, err error) {
	start := time.Now()
	ctx, end := tracing.StartSpan(ctx, "search.retrieve", attribute.String("search.merge", string(s.cfg.Merge)))
	defer func() {
		end(err)
		metrics.SearchStageDuration.WithLabelValues("retrieve").Observe(time.Since(start).Seconds())
	}()

	groups, err := s.retriever.RetrieveGrouped(ctx, q, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	hits = merge(s.cfg.Merge, groups)
	tracing.SetAttributes(ctx, attribute.Int("search.candidates", len(hits)))
	return hits, nil
}

func (s *Service) rerank(ctx context.Context, q string, hits []hit.Hit) (out []hit.Hit, err error) {
	start := time.Now()
	ctx, end := tracing.StartSpan(ctx, "search.rerank", attribute.Int("search.candidates", len(hits)))
	defer func() {
		end(err)
		metrics.SearchStageDuration.WithLabelValues("rerank").Observe(time.Since(start).Seconds())
	}()

	out, err = s.reranker.Rerank(ctx, q, hits)
	if err != nil {
		if !errors.Is(err, domain.ErrRerankUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrRerankUnavailable, err)
		}
		return nil, err
	}
	return out, nil
}

func (s *Service) aggregate(ctx context.Context, q string, hits []hit.Hit) []establishment.Aggregate {
	start := time.Now()
	_, end := tracing.StartSpan(ctx, "search.aggregate", attribute.Int("search.candidates", len(hits)))
	defer func() {
		end(nil)
		metrics.SearchStageDuration.WithLabelValues("aggregate").Observe(time.Since(start).Seconds())
	}()
	return s.aggregator.Aggregate(hits, q)
}

// truncate caps the establishment list and each evidence list. Totals are left as computed
// from the full evidence.
func truncate(aggs []establishment.Aggregate, limit, maxEvidence int) []establishment.Aggregate {
	if limit > 0 && len(aggs) > limit {
		aggs = aggs[:limit]
	}
	if maxEvidence <= 0 {
		return aggs
	}
	for i := range aggs {
		if len(aggs[i].Evidence) > maxEvidence {
			aggs[i].Evidence = aggs[i].Evidence[:maxEvidence:maxEvidence]
		}
	}
	return aggs
}

func outcome(res Result, err error) string {
	switch {
	case err != nil:
		return "error"
	case res.Degraded:
		return "degraded"
	case len(res.Establishments) == 0:
		return "empty"
	default:
		return "ok"
	}
}
