// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/buhofis/buho-tui/internal/logging"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL matches the backend's local development address.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds non-streaming requests. Streams are bounded only
	// by their context.
	DefaultTimeout = 30 * time.Second

	// TunnelBypassHeader suppresses the interstitial page that HTTP tunnels
	// put in front of development backends.
	TunnelBypassHeader = "ngrok-skip-browser-warning"

	// MaxResponseSize caps JSON bodies read into memory.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024

	// maxErrorBody caps the body kept on an HTTPError.
	maxErrorBody = 64 * 1024

	tracerName = "github.com/buhofis/buho-tui/internal/api"
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead. The
// transport has no overall timeout; each call sets its own deadline.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// ErrResponseTooLarge is returned when a JSON body exceeds MaxResponseSize.
var ErrResponseTooLarge = fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)

// =============================================================================
// CLIENT
// =============================================================================

// Request describes one call made through Client.Do.
type Request struct {
	Method  string
	Body    any
	Headers map[string]string
}

// Client talks to the BuhoFis backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	timeout    time.Duration
	log        logging.Logger
	tracer     trace.Tracer
}

// NewClient creates a client for baseURL. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Transport: sharedTransport},
		headers: map[string]string{
			"Content-Type":     "application/json",
			TunnelBypassHeader: "true",
		},
		timeout: DefaultTimeout,
		log:     logging.NewNop(),
		tracer:  otel.Tracer(tracerName),
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithHeader adds a default header sent on every request.
func (c *Client) WithHeader(key, value string) *Client {
	c.headers[key] = value
	return c
}

// WithTimeout sets the deadline applied by Do to non-streaming calls.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// WithLogger sets the logger.
func (c *Client) WithLogger(l logging.Logger) *Client {
	if l != nil {
		c.log = l
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins the base URL and path, collapsing repeated slashes in path.
//
//	NewClient("http://h/api/").URL("//navigation/next") == "http://h/api/navigation/next"
func (c *Client) URL(path string) string {
	path = strings.TrimLeft(path, "/")
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if path == "" {
		return c.baseURL
	}
	return c.baseURL + "/" + path
}

// Do performs a request and returns the response for 2xx statuses. The
// caller owns the body. Non-2xx statuses are returned as *HTTPError,
// transport failures as *NetworkError and cancellation as *AbortError.
func (c *Client) Do(ctx context.Context, path string, r Request) (*http.Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.URL(path)

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ctx, span := c.tracer.Start(ctx, method+" "+"/"+strings.TrimLeft(path, "/"),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", url),
		))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = transportError(ctx, method, url, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("api", "request failed", map[string]interface{}{
			"method": method, "path": path, "error": err, "duration_ms": time.Since(start).Milliseconds(),
		})
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.log.Debug("api", "response", map[string]interface{}{
		"method": method, "path": path, "status": resp.StatusCode, "duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		herr := &HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		span.SetStatus(codes.Error, herr.Error())
		return nil, herr
	}
	return resp, nil
}

// DoJSON performs a request bounded by the client timeout and decodes the
// JSON response into out.
func (c *Client) DoJSON(ctx context.Context, path string, r Request, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.Do(ctx, path, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if errors.Is(err, ErrResponseTooLarge) {
		return err
	}
	if err != nil {
		return transportError(ctx, r.Method, c.URL(path), err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}
	return nil
}

// Ping reports whether the backend answers at path within timeout. It never
// returns an error: any HTTP response below 500 counts as reachable.
func (c *Client) Ping(ctx context.Context, path string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.Do(ctx, path, Request{Method: http.MethodGet})
	if err != nil {
		return IsHTTP(err) && !isServerStatus(err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	return true
}

func isServerStatus(err error) bool {
	he, ok := err.(*HTTPError)
	return ok && he.Status >= 500
}

// readResponse reads the body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}
	return body, nil
}
