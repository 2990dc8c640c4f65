package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrconsole/internal/requestctx"
)

const maxResponseBytes = 8 << 20

// Client talks to the remote data gateway. A Client is immutable; WithToken
// returns a copy bound to one login.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("gateway url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: parsed, http: httpClient}, nil
}

func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Token() string {
	return c.token
}

// List fetches a list endpoint and unwraps its table.
func (c *Client) List(ctx context.Context, path string, query url.Values) ([]Row, error) {
	parsed, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return DecodeTable(parsed)
}

// Post sends body as JSON and decodes the mutation result.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) (Result, error) {
	parsed, err := c.do(ctx, http.MethodPost, path, query, body)
	if err != nil {
		return Result{}, err
	}
	return DecodeResult(parsed)
}

// Get calls a query-only mutation style endpoint such as the login check.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (Result, error) {
	parsed, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return Result{}, err
	}
	return DecodeResult(parsed)
}

// Delete identifies the target through the query string, never the path.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (Result, error) {
	parsed, err := c.do(ctx, http.MethodDelete, path, query, nil)
	if err != nil {
		return Result{}, err
	}
	return DecodeResult(parsed)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (Parsed, error) {
	target := c.base.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	reqID := requestctx.GetRequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("gateway call failed", "method", method, "path", path, "requestId", reqID, "err", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Warn("gateway call rejected", "method", method, "path", path, "status", resp.StatusCode, "requestId", reqID)
		return nil, &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("%s %s", method, path)}
	}

	payload, err := Classify(raw)
	if err != nil {
		return nil, err
	}
	return Normalize(payload)
}
