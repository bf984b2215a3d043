package saferbites

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c, err := New(server.URL+"/", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080/x", "://bad"} {
		if _, err := New(u); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "raw chicken" || q.Get("limit") != "5" || q.Get("rerank") != "false" || q.Get("evidence") != "2" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Has("top_k") {
			t.Error("top_k should be omitted when unset")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"query":"raw chicken","total":1,"candidates":3,"reranked":false,"degraded":false,
			"items":[{"establishment_id":"B1","establishment_name":"Golden Dragon","total_score":2.5,
			"evidence":[{"doc_id":"insp_0","source":"violation","text":"Raw chicken.","score":2.5,"lexical_score":2.5}]}]}`))
	})

	res, err := c.Search(context.Background(), "raw chicken", WithLimit(5), WithRerank(false), WithEvidence(2))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != "B1" || res.Items[0].TotalScore != 2.5 {
		t.Fatalf("unexpected result: %+v", res)
	}
	ev := res.Items[0].Evidence[0]
	if ev.Source != "violation" || ev.SemanticScore != nil {
		t.Errorf("unexpected evidence: %+v", ev)
	}
}

func TestSearch_APIErrors(t *testing.T) {
	tests := []struct {
		status   int
		body     string
		sentinel error
	}{
		{http.StatusBadRequest, `{"code":"invalid_query","message":"invalid query"}`, ErrInvalidQuery},
		{http.StatusServiceUnavailable, `{"code":"rerank_unavailable","message":"rerank unavailable"}`, ErrRerankUnavailable},
		{http.StatusGatewayTimeout, `{"code":"timeout","message":"context deadline exceeded"}`, ErrTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.sentinel.Error(), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Search(context.Background(), "")
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Errorf("expected APIError with status %d, got %v", tt.status, err)
			}
		})
	}
}

func TestSearch_NonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	_, err := c.Search(context.Background(), "mice")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "unexpected_status" || apiErr.Message != "bad gateway" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"error","checks":{"documents":"error"}}`))
	})
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "error" || h.Checks["documents"] != "error" {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	var body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"invalid_query","message":"invalid query"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}, WithPrometheus(reg))
	ctx := context.Background()

	body = `{"items":[]}`
	if _, err := c.Search(ctx, "zzz"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	body = `{"items":[{"establishment_id":"B1"},{"establishment_id":"B2"}]}`
	if _, err := c.Search(ctx, "mice"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	body = `{"items":[{"establishment_id":"B1"}],"degraded":true}`
	if _, err := c.Search(ctx, "mice"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, err := c.Search(ctx, ""); err == nil {
		t.Fatal("expected error for blank query")
	}

	m := c.obs.metrics
	for outcome, want := range map[string]float64{"empty": 1, "ok": 1, "degraded": 1, "error": 1} {
		if got := testutil.ToFloat64(m.operations.WithLabelValues("search", outcome)); got != want {
			t.Errorf("operations_total{search,%s} = %v, want %v", outcome, got, want)
		}
	}
	if got := testutil.ToFloat64(m.apiErrors.WithLabelValues("invalid_query")); got != 1 {
		t.Errorf("api_errors_total{invalid_query} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.results); got != 1 {
		t.Errorf("expected one result-size histogram, got %d", got)
	}

	// a second client on the same registry reuses the collectors
	c2, err := New("http://localhost:1", WithPrometheus(reg))
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	if c2.obs.metrics.operations != m.operations {
		t.Error("expected the registered operations counter to be reused")
	}
}

func TestHealth_DegradedOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"degraded","checks":{"cache":"error"}}`))
	}, WithPrometheus(reg))

	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("health", "degraded")); got != 1 {
		t.Errorf("operations_total{health,degraded} = %v, want 1", got)
	}
}
