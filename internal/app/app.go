// Package app assembles the search pipeline from configuration. It is the composition
// root shared by the API server and the offline tools.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saferbites/saferbites/internal/config"
	"github.com/saferbites/saferbites/internal/db"
	dbRedis "github.com/saferbites/saferbites/internal/db/redis"
	"github.com/saferbites/saferbites/internal/domain"
	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/index/bm25"
	"github.com/saferbites/saferbites/internal/metrics"
	docrepo "github.com/saferbites/saferbites/internal/repository/document"
	"github.com/saferbites/saferbites/internal/repository/embcache"
	openaiEmb "github.com/saferbites/saferbites/internal/transport/openai"
	"github.com/saferbites/saferbites/internal/usecase/aggregate"
	embeddinguc "github.com/saferbites/saferbites/internal/usecase/embedding"
	healthuc "github.com/saferbites/saferbites/internal/usecase/health"
	"github.com/saferbites/saferbites/internal/usecase/rerank"
	"github.com/saferbites/saferbites/internal/usecase/retrieve"
	searchuc "github.com/saferbites/saferbites/internal/usecase/search"
)

// App holds the assembled services.
type App struct {
	Store    *docrepo.Store
	Search   *searchuc.Service
	Health   *healthuc.Service
	embedder domain.Embedder
	cache    db.Store
}

// Close releases external connections.
func (a *App) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// Build loads the collections and wires retrieval, reranking and aggregation.
// The embedding chain is only built when reranking is enabled.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.RegisterSearchMetrics()
	metrics.RegisterEmbeddingMetrics()

	store, err := docrepo.Load(docrepo.LoadOptions{
		ViolationsPath: cfg.Data.ViolationsPath,
		ReviewsPath:    cfg.Data.ReviewsPath,
		Schema:         docrepo.SchemaWithAliases(cfg.Data.Aliases),
		TagDelimiter:   cfg.Data.TagDelimiter,
		Params:         bm25.Params{K1: cfg.Index.K1, B: cfg.Index.B},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	metrics.DocumentsLoaded.WithLabelValues(string(domdoc.Violation)).Set(float64(store.Violations().Len()))
	metrics.DocumentsLoaded.WithLabelValues(string(domdoc.Review)).Set(float64(store.Reviews().Len()))

	a := &App{Store: store}

	merge, err := searchuc.ParseMergeStrategy(cfg.Retrieval.Merge)
	if err != nil {
		return nil, err
	}
	policy, err := searchuc.ParseFailurePolicy(cfg.Rerank.OnFailure)
	if err != nil {
		return nil, err
	}

	collections := make([]retrieve.Collection, 0, 2)
	for _, c := range store.Collections() {
		collections = append(collections, c)
	}
	retriever := retrieve.New(collections, cfg.Retrieval.TopK)

	var reranker searchuc.Reranker
	if cfg.Rerank.Enabled {
		embedder, err := a.buildEmbedder(ctx, cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.embedder = embedder
		reranker = rerank.New(embedder, rerank.Options{
			Enabled:             true,
			QueryInstruction:    cfg.Rerank.QueryInstruction,
			DocumentInstruction: cfg.Rerank.DocumentInstruction,
		})
	}

	var booster aggregate.Booster = aggregate.NoBoost{}
	if cfg.Aggregate.Boost == "tag" {
		booster = aggregate.NewTagBooster(cfg.Aggregate.BoostFactor, nil)
	}

	a.Search = searchuc.New(retriever, reranker, aggregate.New(booster), searchuc.Config{
		Merge:           merge,
		OnRerankFailure: policy,
		QueryTimeout:    time.Duration(cfg.Search.QueryTimeoutSec) * time.Second,
	})

	var cachePinger healthuc.CachePinger
	if a.cache != nil {
		cachePinger = a.cache
	}
	var embChecker healthuc.EmbeddingChecker
	if a.embedder != nil {
		embChecker = newEmbeddingHealthChecker(a.embedder)
	}
	a.Health = healthuc.New(store, cachePinger, embChecker)

	logger.Info("search pipeline ready",
		zap.String("merge", string(merge)),
		zap.Bool("rerank", cfg.Rerank.Enabled),
		zap.String("on_rerank_failure", string(policy)),
		zap.String("boost", cfg.Aggregate.Boost),
		zap.Bool("cache", a.cache != nil),
	)
	return a, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Breaker -> Instrumented.
func (a *App) buildEmbedder(ctx context.Context, cfg config.Config, logger *zap.Logger) (domain.Embedder, error) {
	ec := cfg.Embedding

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Timeout:    time.Duration(ec.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		a.cache = store
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		logger.Info("connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))

		embedder = embcache.New(embedder, store, embcache.Options{
			Namespace: ec.Model,
			TTL:       time.Duration(cfg.Cache.TTLHours) * time.Hour,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewBreakerEmbedder(embedder, ec.Provider, embeddinguc.BreakerConfig{
		MinRequests:      ec.Breaker.MinRequests,
		FailureRatio:     ec.Breaker.FailureRatio,
		OpenTimeout:      time.Duration(ec.Breaker.OpenTimeoutSec) * time.Second,
		HalfOpenMaxCalls: ec.Breaker.HalfOpenMaxCalls,
	}, logger)

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, ec.MaxBatchSize, logger)

	logger.Info("embedder created",
		zap.String("provider", ec.Provider),
		zap.String("model", ec.Model),
		zap.Int("dimensions", ec.Dimensions),
	)
	return embedder, nil
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
