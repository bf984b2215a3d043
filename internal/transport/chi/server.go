// Package chi is the HTTP JSON API.
package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/saferbites/saferbites/internal/domain"
	"github.com/saferbites/saferbites/internal/domain/search/establishment"
	"github.com/saferbites/saferbites/internal/logger"
	healthuc "github.com/saferbites/saferbites/internal/usecase/health"
	searchuc "github.com/saferbites/saferbites/internal/usecase/search"
)

// Searcher answers search queries.
type Searcher interface {
	Search(ctx context.Context, query string, opts searchuc.Options) (searchuc.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search: search,
		health: health,
		logger: logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorResponseCodeInvalidQuery),
			sentinelHandler(domain.ErrRerankUnavailable,
				http.StatusServiceUnavailable, ErrorResponseCodeRerankUnavailable),
			sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorResponseCodeTimeout),
		},
	}
}

// SearchEstablishments handles GET /api/v1/search.
func (s *Server) SearchEstablishments(w http.ResponseWriter, r *http.Request, params SearchParams) {
	opts := searchuc.Options{
		TopK:        derefInt(params.TopK),
		Rerank:      params.Rerank,
		Limit:       derefInt(params.Limit),
		MaxEvidence: derefInt(params.Evidence),
	}
	if opts.TopK < 0 || opts.Limit < 0 || opts.MaxEvidence < 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest,
			"top_k, limit and evidence must not be negative")
		return
	}

	res, err := s.search.Search(r.Context(), params.Q, opts)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResultToResponse(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// writeJSON encodes v before committing the status, so an unencodable body becomes a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(ErrorResponse{
			Code:    ErrorResponseCodeInternalError,
			Message: "internal error",
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrRerankUnavailable,
		context.DeadlineExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContext(ctx)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func searchResultToResponse(res searchuc.Result) SearchResponse {
	items := make([]EstablishmentItem, len(res.Establishments))
	for i, a := range res.Establishments {
		items[i] = establishmentToItem(a)
	}
	resp := SearchResponse{
		Query:      res.Query,
		Items:      items,
		Total:      len(items),
		Candidates: res.Candidates,
		Reranked:   res.Reranked,
		Degraded:   res.Degraded,
	}
	if res.Warning != "" {
		w := res.Warning
		resp.Warning = &w
	}
	return resp
}

func establishmentToItem(a establishment.Aggregate) EstablishmentItem {
	evidence := make([]Evidence, len(a.Evidence))
	for i, ev := range a.Evidence {
		doc := ev.Hit.Document()
		e := Evidence{
			DocID:        doc.ID(),
			Source:       string(doc.Source()),
			Text:         doc.OriginalText(),
			Score:        ev.Score,
			LexicalScore: ev.Hit.LexicalScore(),
			Tags:         doc.Tags(),
		}
		if sem, ok := ev.Hit.SemanticScore(); ok {
			e.SemanticScore = &sem
		}
		evidence[i] = e
	}
	return EstablishmentItem{
		EstablishmentID:   a.ID,
		EstablishmentName: a.Name,
		TotalScore:        a.TotalScore,
		Evidence:          evidence,
		EvidenceTotal:     a.EvidenceCount,
		EvidenceTruncated: a.Truncated(),
	}
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
