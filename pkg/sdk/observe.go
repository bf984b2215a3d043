package saferbites

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of the operations counter.
const (
	outcomeOK       = "ok"
	outcomeEmpty    = "empty"
	outcomeDegraded = "degraded"
	outcomeError    = "error"
)

// clientMetrics holds the SDK's prometheus collectors.
type clientMetrics struct {
	operations *prometheus.CounterVec   // op, outcome
	latency    *prometheus.HistogramVec // op
	results    prometheus.Histogram     // establishments per search
	apiErrors  *prometheus.CounterVec   // code
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saferbites",
			Subsystem: "client",
			Name:      "operations_total",
			Help:      "Client calls by operation and outcome (ok, empty, degraded, error).",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "saferbites",
			Subsystem: "client",
			Name:      "operation_duration_seconds",
			Help:      "Client call latency including the network round trip.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"op"}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "saferbites",
			Subsystem: "client",
			Name:      "search_establishments",
			Help:      "Establishments returned per successful search.",
			Buckets:   []float64{0, 1, 3, 5, 10, 25, 50, 100},
		}),
		apiErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saferbites",
			Subsystem: "client",
			Name:      "api_errors_total",
			Help:      "Error responses by API error code.",
		}, []string{"code"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.latency); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.results); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.apiErrors); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector already registered under its name.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("saferbites: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("saferbites: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and counts client calls. Both sinks are optional.
type observer struct {
	logger  *slog.Logger
	metrics *clientMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// search records one Search call.
func (o *observer) search(start time.Time, res SearchResult, err error) {
	outcome := outcomeOK
	switch {
	case err != nil:
		outcome = outcomeError
	case res.Degraded:
		outcome = outcomeDegraded
	case len(res.Items) == 0:
		outcome = outcomeEmpty
	}
	if o.metrics != nil && err == nil {
		o.metrics.results.Observe(float64(len(res.Items)))
	}
	o.record("search", outcome, start, err,
		slog.Int("establishments", len(res.Items)),
		slog.Int("candidates", res.Candidates),
		slog.Bool("reranked", res.Reranked),
	)
}

// health records one Health call. A reported "degraded" status counts as degraded.
func (o *observer) health(start time.Time, h HealthStatus, err error) {
	outcome := outcomeOK
	switch {
	case err != nil:
		outcome = outcomeError
	case h.Status != "" && h.Status != "ok":
		outcome = outcomeDegraded
	}
	o.record("health", outcome, start, err, slog.String("status", h.Status))
}

func (o *observer) record(op, outcome string, start time.Time, err error, attrs ...slog.Attr) {
	dur := time.Since(start)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, outcome).Inc()
		o.metrics.latency.WithLabelValues(op).Observe(dur.Seconds())
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			o.metrics.apiErrors.WithLabelValues(apiErr.Code).Inc()
		}
	}

	if o.logger == nil {
		return
	}
	args := []any{"op", op, "outcome", outcome, "duration", dur}
	for _, a := range attrs {
		args = append(args, a)
	}
	if err != nil {
		o.logger.Warn("saferbites call failed", append(args, "error", err)...)
		return
	}
	o.logger.Debug("saferbites call", args...)
}
