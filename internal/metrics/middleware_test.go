package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "":
			w.WriteHeader(http.StatusBadRequest)
		case "slow":
			w.WriteHeader(http.StatusGatewayTimeout)
			w.WriteHeader(http.StatusOK)
		default:
			_, _ = w.Write([]byte(`{"items":[]}`))
		}
	})
	r.Get("/establishments/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func serve(r http.Handler, target string) {
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, http.NoBody))
}

func TestMiddleware_SearchRoute(t *testing.T) {
	r := newTestRouter()
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/v1/search", "200"))

	serve(r, "/api/v1/search?q=mice")

	if v := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/v1/search", "200")); v != before+1 {
		t.Errorf("requests_total = %f, want %f", v, before+1)
	}
	if testutil.CollectAndCount(HTTPRequestDuration) == 0 {
		t.Error("expected latency observations")
	}
	if testutil.CollectAndCount(HTTPResponseBytes) == 0 {
		t.Error("expected response size observations")
	}
	if v := testutil.ToFloat64(HTTPInFlight); v != 0 {
		t.Errorf("in-flight gauge must return to 0, got %f", v)
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := newTestRouter()
	tests := []struct {
		target string
		status string
	}{
		{"/api/v1/search", "400"},
		{"/api/v1/search?q=slow", "504"},
	}
	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/v1/search", tc.status))
			serve(r, tc.target)
			if v := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/v1/search", tc.status)); v != before+1 {
				t.Errorf("requests_total{status=%s} = %f, want %f", tc.status, v, before+1)
			}
		})
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := newTestRouter()
	for _, id := range []string{"41", "42", "43"} {
		serve(r, "/establishments/"+id)
	}
	if v := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/establishments/{id}", "200")); v != 3 {
		t.Errorf("expected 3 requests under the route pattern, got %f", v)
	}
}

func TestRoutePattern_NoRouteContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/anything", http.NoBody)
	if got := routePattern(req); got != unmatchedRoute {
		t.Errorf("routePattern = %q, want %q", got, unmatchedRoute)
	}
}

func TestStatusClass(t *testing.T) {
	for status, want := range map[int]string{200: "2xx", 304: "3xx", 400: "4xx", 503: "5xx", 504: "5xx"} {
		if got := statusClass(status); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestRegister_Idempotent(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()
	RegisterSearchMetrics()
	RegisterSearchMetrics()
	RegisterEmbeddingMetrics()
	RegisterEmbeddingMetrics()

	RerankFallbackTotal.Inc()
	if v := testutil.ToFloat64(RerankFallbackTotal); v < 1 {
		t.Errorf("expected fallback counter >= 1, got %f", v)
	}
}
