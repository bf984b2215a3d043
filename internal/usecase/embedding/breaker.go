package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/saferbites/saferbites/internal/domain"
	"github.com/saferbites/saferbites/internal/metrics"
)

// BreakerConfig configures the provider circuit breaker.
type BreakerConfig struct {
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

// DefaultBreakerConfig returns the breaker defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MinRequests:      10,
		FailureRatio:     0.5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxCalls: 2,
	}
}

func (c BreakerConfig) normalize() BreakerConfig {
	def := DefaultBreakerConfig()
	if c.MinRequests == 0 {
		c.MinRequests = def.MinRequests
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = def.FailureRatio
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = def.OpenTimeout
	}
	if c.HalfOpenMaxCalls == 0 {
		c.HalfOpenMaxCalls = def.HalfOpenMaxCalls
	}
	return c
}

// BreakerEmbedder stops calling a failing provider until the breaker half-opens.
// While open, calls fail fast with domain.ErrEmbeddingProviderError.
type BreakerEmbedder struct {
	inner   domain.Embedder
	breaker *gobreaker.CircuitBreaker[domain.BatchEmbeddingResult]
}

// NewBreakerEmbedder wraps inner with a circuit breaker named name.
func NewBreakerEmbedder(inner domain.Embedder, name string, cfg BreakerConfig, logger *zap.Logger) *BreakerEmbedder {
	cfg = cfg.normalize()
	metrics.EmbeddingBreakerState.WithLabelValues(name).Set(stateValue(gobreaker.StateClosed))

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// caller cancellations say nothing about provider health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("embedding circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.EmbeddingBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	}
	return &BreakerEmbedder{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[domain.BatchEmbeddingResult](settings),
	}
}

// Embed embeds one text through the breaker.
func (b *BreakerEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := b.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	if len(res.Embeddings) != 1 {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %d embeddings for 1 text",
			domain.ErrEmbeddingProviderError, len(res.Embeddings))
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed embeds texts through the breaker in one inner call.
func (b *BreakerEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	res, err := b.breaker.Execute(func() (domain.BatchEmbeddingResult, error) {
		return domain.EmbedAll(ctx, b.inner, texts)
	})
	if err != nil {
		if IsCircuitOpen(err) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
		}
		return domain.BatchEmbeddingResult{}, err
	}
	return res, nil
}

// State returns the breaker state.
func (b *BreakerEmbedder) State() gobreaker.State { return b.breaker.State() }

// HealthCheck reports an open breaker as unhealthy, then delegates to the inner embedder.
func (b *BreakerEmbedder) HealthCheck(ctx context.Context) error {
	if b.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, gobreaker.ErrOpenState)
	}
	if hc, ok := b.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through
	}
	return nil
}

// IsCircuitOpen reports whether err was produced by an open or saturated breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
