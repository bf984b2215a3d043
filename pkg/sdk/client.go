package saferbites

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client calls the SaferBites HTTP API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	obs     *observer
}

// New creates a client for the API served at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("saferbites: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("saferbites: base url must be absolute, got %q", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return &Client{baseURL: u, http: hc, obs: obs}, nil
}

// Search runs a free-text safety query.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.search(start, res, err) }()

	var p searchParams
	for _, o := range opts {
		o(&p)
	}

	q := url.Values{}
	q.Set("q", query)
	if p.topK > 0 {
		q.Set("top_k", strconv.Itoa(p.topK))
	}
	if p.rerank != nil {
		q.Set("rerank", strconv.FormatBool(*p.rerank))
	}
	if p.limit > 0 {
		q.Set("limit", strconv.Itoa(p.limit))
	}
	if p.evidence > 0 {
		q.Set("evidence", strconv.Itoa(p.evidence))
	}

	if err := c.get(ctx, "/api/v1/search", q, &res, http.StatusOK); err != nil {
		return SearchResult{}, err
	}
	return res, nil
}

// Health returns the service health report. A 503 with a readable body is a report,
// not an error.
func (c *Client) Health(ctx context.Context) (h HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.health(start, h, err) }()

	if err := c.get(ctx, "/health", nil, &h, http.StatusOK, http.StatusServiceUnavailable); err != nil {
		return HealthStatus{}, err
	}
	return h, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any, okStatus ...int) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("saferbites: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("saferbites: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("saferbites: read %s: %w", path, err)
	}

	for _, s := range okStatus {
		if resp.StatusCode == s {
			if err := json.Unmarshal(body, dest); err != nil {
				return fmt.Errorf("saferbites: decode %s: %w", path, err)
			}
			return nil
		}
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if json.Unmarshal(body, apiErr) != nil || apiErr.Code == "" {
		apiErr.Code = "unexpected_status"
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
