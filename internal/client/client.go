package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/david/grantdraft/internal/filter"
	"github.com/david/grantdraft/internal/models"
)

// DefaultBaseURL is used when no API address is configured.
const DefaultBaseURL = "http://localhost:8000"

// ErrRequestFailed matches every error returned by Client.
var ErrRequestFailed = errors.New("request failed")

// RequestError is the single failure kind of the grants API client.
// StatusCode is zero when no response was received.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error: %d", e.StatusCode)
	}
	if e.Err != nil {
		return "API error: " + e.Err.Error()
	}
	return "API error"
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// Client talks to the grants REST API. Every call is one round trip with
// no retry or caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListGrants fetches one page of grants matching f.
func (c *Client) ListGrants(ctx context.Context, f filter.State) (*models.ListResponse, error) {
	path := "/api/v1/grants"
	if q := f.Query(); q != "" {
		path += "?" + q
	}
	var out models.ListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGrant fetches the full record of one grant.
func (c *Client) GetGrant(ctx context.Context, id string) (*models.GrantDetail, error) {
	var out models.GrantDetail
	if err := c.do(ctx, http.MethodGet, "/api/v1/grants/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TriggerSync asks the backend to start a sync job for source, which is a
// source name or models.SyncAll. It returns as soon as the job is
// accepted.
func (c *Client) TriggerSync(ctx context.Context, source string) (*models.SyncResponse, error) {
	if source != models.SyncAll && !models.Source(source).Valid() {
		return nil, fmt.Errorf("invalid sync source %q", source)
	}
	var out models.SyncResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/grants/sync", models.SyncRequest{Source: source}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSyncStatus fetches the log of a sync job started by TriggerSync.
func (c *Client) GetSyncStatus(ctx context.Context, logID string) (*models.SyncLog, error) {
	var out models.SyncLog
	if err := c.do(ctx, http.MethodGet, "/api/v1/sync/status/"+url.PathEscape(logID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &RequestError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &RequestError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
