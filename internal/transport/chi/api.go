package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeInvalidQuery      ErrorResponseCode = "invalid_query"
	ErrorResponseCodeRerankUnavailable ErrorResponseCode = "rerank_unavailable"
	ErrorResponseCodeTimeout           ErrorResponseCode = "timeout"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchParams are the query parameters of GET /api/v1/search.
type SearchParams struct {
	Q        string `form:"q" json:"q"`
	TopK     *int   `form:"top_k,omitempty" json:"top_k,omitempty"`
	Rerank   *bool  `form:"rerank,omitempty" json:"rerank,omitempty"`
	Limit    *int   `form:"limit,omitempty" json:"limit,omitempty"`
	Evidence *int   `form:"evidence,omitempty" json:"evidence,omitempty"`
}

// Evidence is one supporting snippet of an establishment.
type Evidence struct {
	DocID         string   `json:"doc_id"`
	Source        string   `json:"source"`
	Text          string   `json:"text"`
	Score         float64  `json:"score"`
	LexicalScore  float64  `json:"lexical_score"`
	SemanticScore *float64 `json:"semantic_score,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// EstablishmentItem is one ranked establishment.
type EstablishmentItem struct {
	EstablishmentID   string     `json:"establishment_id"`
	EstablishmentName string     `json:"establishment_name"`
	TotalScore        float64    `json:"total_score"`
	Evidence          []Evidence `json:"evidence"`

	// EvidenceTotal counts every snippet summed into total_score; evidence may list fewer.
	EvidenceTotal     int  `json:"evidence_total"`
	EvidenceTruncated bool `json:"evidence_truncated"`
}

// SearchResponse is the body of GET /api/v1/search.
type SearchResponse struct {
	Query      string              `json:"query"`
	Items      []EstablishmentItem `json:"items"`
	Total      int                 `json:"total"`
	Candidates int                 `json:"candidates"`
	Reranked   bool                `json:"reranked"`
	Degraded   bool                `json:"degraded"`
	Warning    *string             `json:"warning,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ServerInterface lists the HTTP operations.
type ServerInterface interface {
	// (GET /api/v1/search)
	SearchEstablishments(w http.ResponseWriter, r *http.Request, params SearchParams)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// HandlerOptions configures Handler.
type HandlerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler mounts si onto opts.BaseRouter (a new router when nil).
func Handler(si ServerInterface, opts HandlerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	errorHandler := opts.ErrorHandlerFunc
	if errorHandler == nil {
		errorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}

	r.Get("/api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		params, err := bindSearchParams(r)
		if err != nil {
			errorHandler(w, r, err)
			return
		}
		si.SearchEstablishments(w, r, params)
	})
	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)
	return r
}

func bindSearchParams(r *http.Request) (SearchParams, error) {
	var params SearchParams
	query := r.URL.Query()

	// q is bound as optional so a missing query and a blank one share the domain error path.
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		return params, &InvalidParamFormatError{ParamName: "q", Err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "top_k", query, &params.TopK); err != nil {
		return params, &InvalidParamFormatError{ParamName: "top_k", Err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "rerank", query, &params.Rerank); err != nil {
		return params, &InvalidParamFormatError{ParamName: "rerank", Err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		return params, &InvalidParamFormatError{ParamName: "limit", Err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "evidence", query, &params.Evidence); err != nil {
		return params, &InvalidParamFormatError{ParamName: "evidence", Err: err}
	}
	return params, nil
}
