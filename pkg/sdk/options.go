package saferbites

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	httpClient *http.Client
	timeout    time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithHTTPClient sets the HTTP client. Defaults to a client with a 15s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout sets the timeout of the default HTTP client.
// Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// SearchOption configures one Search call.
type SearchOption func(*searchParams)

type searchParams struct {
	topK     int
	rerank   *bool
	limit    int
	evidence int
}

// WithTopK sets the candidates retrieved per collection.
func WithTopK(k int) SearchOption {
	return func(p *searchParams) { p.topK = k }
}

// WithRerank forces semantic reranking on or off for this query.
func WithRerank(enabled bool) SearchOption {
	return func(p *searchParams) { p.rerank = &enabled }
}

// WithLimit caps the number of establishments returned.
func WithLimit(n int) SearchOption {
	return func(p *searchParams) { p.limit = n }
}

// WithEvidence caps the evidence snippets returned per establishment.
func WithEvidence(n int) SearchOption {
	return func(p *searchParams) { p.evidence = n }
}
