// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package upstream is the HTTP client for the financial REST backend.

Every session and dashboard call of the gateway goes through [Client]. The
client forwards the visitor's bearer token, propagates the request id for log
correlation and turns every network failure or non-2xx answer into a
[*FetchError].
*/
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/platform/ctxutil"
)

const (
	// maxErrorBody caps how much of a failed response body is kept for logs.
	maxErrorBody = 4 << 10

	// MaxResponseBody caps how much of any backend answer is read.
	MaxResponseBody = 8 << 20
)

// ErrResponseTooLarge reports an answer longer than [MaxResponseBody].
var ErrResponseTooLarge = errors.New("response body exceeds limit")

// FetchError reports a failed call to the REST backend.
//
// StatusCode is zero when no response was received at all.
type FetchError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("upstream: %s %s: %v", e.Method, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("upstream: %s %s: status %d: %v", e.Method, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Rejected reports whether the backend answered with a 4xx status.
func (e *FetchError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// StatusOf extracts the upstream status code from err, or zero.
func StatusOf(err error) int {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}

// Response is a raw backend answer, returned where the caller relays it as is.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client calls the REST backend rooted at one base URL.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a client for baseURL with a per-call timeout.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("upstream: invalid base URL: %w", err)
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

/*
GetJSON issues an authenticated GET and decodes a 2xx body into target.

Parameters:
  - ctx: context.Context
  - path: string (absolute path below the base URL)
  - query: url.Values (may be nil)
  - token: string (bearer token, omitted when empty)
  - target: any (pointer to the destination)

Returns:
  - error: *FetchError on network failure, non-2xx status or undecodable body
*/
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, token string, target any) error {
	response, err := c.do(ctx, http.MethodGet, path, query, token, nil)
	if err != nil {
		return err
	}
	return decode(http.MethodGet, path, response, target)
}

// PostJSON encodes body, issues a POST and decodes a 2xx answer into target.
// A nil target discards the answer.
func (c *Client) PostJSON(ctx context.Context, path, token string, body, target any) error {
	response, err := c.Post(ctx, path, token, body)
	if err != nil {
		return err
	}
	if !success(response.StatusCode) {
		return &FetchError{
			Method:     http.MethodPost,
			Path:       path,
			StatusCode: response.StatusCode,
			Body:       truncate(response.Body),
		}
	}
	return decode(http.MethodPost, path, response, target)
}

// Post encodes body and returns the raw answer whatever its status.
// Only a network or encoding failure is an error.
func (c *Client) Post(ctx context.Context, path, token string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &FetchError{Method: http.MethodPost, Path: path, Err: fmt.Errorf("encode body: %w", err)}
	}
	return c.do(ctx, http.MethodPost, path, nil, token, payload)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, payload []byte) (*Response, error) {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, &FetchError{Method: method, Path: path, Err: err}
	}

	request.Header.Set("Accept", "application/json")
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		request.Header.Set(constants.HeaderXRequestID, requestID)
	}

	startTime := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &FetchError{Method: method, Path: path, Err: err}
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, MaxResponseBody+1))
	if err != nil {
		return nil, &FetchError{Method: method, Path: path, StatusCode: response.StatusCode, Err: err}
	}
	if int64(len(raw)) > MaxResponseBody {
		return nil, &FetchError{Method: method, Path: path, StatusCode: response.StatusCode, Err: ErrResponseTooLarge}
	}

	ctxutil.GetLogger(ctx).DebugContext(ctx, "upstream_call_finished",
		slog.String("upstream_method", method),
		slog.String("upstream_path", path),
		slog.Int("upstream_status", response.StatusCode),
		slog.Int64("upstream_latency_ms", time.Since(startTime).Milliseconds()),
	)

	return &Response{StatusCode: response.StatusCode, Header: response.Header, Body: raw}, nil
}

func decode(method, path string, response *Response, target any) error {
	if !success(response.StatusCode) {
		return &FetchError{Method: method, Path: path, StatusCode: response.StatusCode, Body: truncate(response.Body)}
	}
	if target == nil || len(bytes.TrimSpace(response.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(response.Body, target); err != nil {
		return &FetchError{Method: method, Path: path, StatusCode: response.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody])
	}
	return string(body)
}
