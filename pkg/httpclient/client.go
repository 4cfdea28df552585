// Package httpclient is a convenience layer over net/http for test suites
// and lightweight service clients: bearer authentication with token caching,
// ordered request/response observation hooks, typed request/response
// marshalling, expected-status assertions, and caller-supplied retry
// policies.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/milan604/client-lab/pkg/logger"
	"github.com/milan604/client-lab/pkg/validator"
	"github.com/milan604/client-lab/pkg/version"
)

// Config holds the base configuration of a Client. It is fixed at
// construction; only the handler list can grow afterwards, via AddHandler.
type Config struct {
	// BaseURL prefixes every request path. Trailing slashes are trimmed.
	BaseURL string
	// Timeout bounds each request, including a retry policy's individual
	// attempts (not the policy as a whole). Defaults to 30s.
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	// DefaultHeaders are sent with every request unless a per-request header
	// overrides them. The map is copied, never aliased.
	DefaultHeaders map[string]string
	// AuthProvider, when set, runs as the per-request authentication step.
	AuthProvider AuthProvider
	// Handlers are the initial observation hooks, executed in order.
	Handlers []Handler
}

// Client owns the lifecycle of the underlying HTTP session. The session is
// built lazily on the first request and torn down by Close. A Client is safe
// for concurrent requests; AddHandler and Close are not safe to race with
// in-flight requests on the same instance.
type Client struct {
	cfg       Config
	log       logger.LogManager
	validator *validator.Validator
	transport http.RoundTripper

	mu       sync.Mutex
	handlers []Handler
	session  *http.Client
	cleanup  runtime.Cleanup
	closed   bool
}

// ClientOption configures a Client beyond the base Config, the open-ended
// bag for transport-specific tweaks.
type ClientOption func(*Client)

// WithLogger sets the logger used for client diagnostics and contained hook
// failures.
func WithLogger(l logger.LogManager) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// WithValidator replaces the validator used for response models.
func WithValidator(v *validator.Validator) ClientOption {
	return func(c *Client) {
		c.validator = v
	}
}

// WithTransport sets a custom RoundTripper for the underlying session.
// InsecureSkipVerify is ignored when a transport is supplied.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = rt
	}
}

// New creates a Client. No connection is opened until the first request.
func New(cfg Config, opts ...ClientOption) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	headers := make(map[string]string, len(cfg.DefaultHeaders)+1)
	for k, v := range cfg.DefaultHeaders {
		headers[k] = v
	}
	if _, ok := headers["User-Agent"]; !ok {
		headers["User-Agent"] = "client-lab/" + version.Version
	}
	cfg.DefaultHeaders = headers

	c := &Client{
		cfg:       cfg,
		validator: validator.Default,
		handlers:  append([]Handler(nil), cfg.Handlers...),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AddHandler appends a hook handler. Handlers run in insertion order for
// both the request and the response event; the live session picks up the
// addition immediately. Returns the client for chaining.
func (c *Client) AddHandler(h Handler) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
	return c
}

// ensureSession builds the underlying http.Client on first use. A cleanup is
// registered so an abandoned, never-closed client still releases its
// connections; explicit Close remains the primary release path.
func (c *Client) ensureSession() (*http.Client, []Handler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, nil, ErrClientClosed
	}

	if c.session == nil {
		rt := c.transport
		if rt == nil {
			t := http.DefaultTransport.(*http.Transport).Clone()
			if c.cfg.InsecureSkipVerify {
				t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
			}
			rt = t
		}
		c.session = &http.Client{
			Timeout:   c.cfg.Timeout,
			Transport: rt,
		}
		c.cleanup = runtime.AddCleanup(c, func(s *http.Client) {
			s.CloseIdleConnections()
		}, c.session)
	}

	handlers := append([]Handler(nil), c.handlers...)
	return c.session, handlers, nil
}

// Close releases the underlying session. It is idempotent: closing a client
// that never opened a session, or closing twice, is a no-op. Closing is
// terminal; subsequent requests return ErrClientClosed.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if c.session != nil {
		c.cleanup.Stop()
		c.session.CloseIdleConnections()
		c.session = nil
	}
}

// Execute performs a raw request: auth step, hooks, transport call. It does
// not serialize models, assert statuses, or retry; Send layers those on top.
func (c *Client) Execute(ctx context.Context, method, path string, opts ...RequestOption) (*Response, error) {
	ro := newRequestOptions(opts)
	return c.execute(ctx, method, path, ro, ro.rawJSON)
}

func (c *Client) execute(ctx context.Context, method, path string, ro *requestOptions, body []byte) (*Response, error) {
	session, handlers, err := c.ensureSession()
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	ctx = ContextWithRequestID(ctx, requestID)

	fullURL, err := c.buildURL(path, ro.query)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, v := range c.cfg.DefaultHeaders {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	// Per-request headers win over defaults.
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}

	// The auth step is the only request mutation; it runs before hooks so
	// observers see the request exactly as it goes on the wire.
	if c.cfg.AuthProvider != nil {
		if err := c.cfg.AuthProvider.Authenticate(ctx, req); err != nil {
			return nil, err
		}
	}

	dispatchRequest(c.log, handlers, RequestEvent{
		Context: ctx,
		ID:      requestID,
		Method:  method,
		URL:     fullURL,
		Header:  req.Header.Clone(),
		Body:    body,
	})

	start := time.Now()
	resp, err := session.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	dispatchResponse(c.log, handlers, ResponseEvent{
		Context:    ctx,
		ID:         requestID,
		Method:     method,
		URL:        fullURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       respBody,
		Elapsed:    elapsed,
	})

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       respBody,
		Duration:   elapsed,
	}, nil
}

func (c *Client) buildURL(path string, query map[string]string) (string, error) {
	full := c.cfg.BaseURL
	if path != "" {
		full += "/" + strings.TrimLeft(path, "/")
	}

	if len(query) > 0 {
		u, err := url.Parse(full)
		if err != nil {
			return "", fmt.Errorf("parse url %q: %w", full, err)
		}
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		full = u.String()
	}

	return full, nil
}

// BaseURL returns the configured base URL with trailing slashes trimmed.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}
