// Package engine is the generic request/response lifecycle primitive the rest
// of the console is built on. Operations are bound to a verb and path, expose
// explicit triggers, and settle into {data, response, loading, err} state.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/bidhub/console-go/internal/credentials"
)

const defaultTimeout = 30 * time.Second

// requestIDHeader correlates client requests with server logs.
const requestIDHeader = "X-Request-Id"

// Client issues authenticated requests against the remote API. It owns the
// transport, attaches the stored access token to every non-anonymous call,
// and enforces the credential-clearing policy on 401/403 responses.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	store      credentials.Store
	logger     *slog.Logger
	userAgent  string

	mu           sync.Mutex
	authFailures []func()
}

// ClientOptions bundles dependencies for NewClient.
type ClientOptions struct {
	// BaseURL is the remote API root, e.g. "https://api.example.com/v1/".
	BaseURL string

	// Store holds the persisted credential pair. Required.
	Store credentials.Store

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger

	// HTTPClient overrides the default transport (used by tests).
	HTTPClient *http.Client

	// Timeout applies to the default transport only.
	Timeout time.Duration

	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// NewClient creates a request engine client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if opts.Store == nil {
		return nil, errors.New("credential store is required")
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		// The remote API sets auxiliary cookies alongside bearer auth; keep a
		// jar with proper public-suffix scoping so they round-trip.
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jarErr)
		}
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Jar:     jar,
			Timeout: timeout,
		}
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		store:      opts.Store,
		logger:     logger,
		userAgent:  opts.UserAgent,
	}, nil
}

// MustNewClient is like NewClient but panics on error.
func MustNewClient(opts ClientOptions) *Client {
	c, err := NewClient(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Store returns the credential store the client reads tokens from.
func (c *Client) Store() credentials.Store { return c.store }

// OnAuthFailure registers an observer invoked after any request settles with
// 401 or 403. By the time observers run the credential store has already been
// cleared.
func (c *Client) OnAuthFailure(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authFailures = append(c.authFailures, fn)
}

func (c *Client) notifyAuthFailure() {
	c.mu.Lock()
	observers := make([]func(), len(c.authFailures))
	copy(observers, c.authFailures)
	c.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

// Response is the settled form of a completed HTTP exchange. The body is
// fully read so callers can branch on status and re-decode at will.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// StatusError reports a settled response with a non-success status. The
// response itself stays available on the operation state so callers can
// distinguish, say, a 404 from a 500.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote API returned %s", e.Status)
}

// IsAuthFailure reports whether err is a StatusError carrying 401 or 403.
func IsAuthFailure(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusUnauthorized ||
		statusErr.StatusCode == http.StatusForbidden
}

// requestSpec is the internal shape of a single trigger invocation.
type requestSpec struct {
	method    string
	path      string
	query     url.Values
	body      any
	anonymous bool
}

// do performs one HTTP exchange. A nil error with a non-OK response never
// happens: non-2xx settles as (*Response, *StatusError). A nil response
// means the transport itself failed.
func (c *Client) do(ctx context.Context, spec requestSpec) (*Response, error) {
	target, err := c.baseURL.Parse(strings.TrimPrefix(spec.path, "/"))
	if err != nil {
		return nil, fmt.Errorf("resolve path %q: %w", spec.path, err)
	}
	if len(spec.query) > 0 {
		target.RawQuery = spec.query.Encode()
	}

	var bodyReader io.Reader
	if spec.body != nil {
		payload, marshalErr := json.Marshal(spec.body)
		if marshalErr != nil {
			return nil, fmt.Errorf("marshal request body: %w", marshalErr)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, target.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if spec.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if !spec.anonymous {
		c.attachBearer(ctx, req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			slog.String("method", spec.method),
			slog.String("path", spec.path),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%s %s: %w", spec.method, spec.path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.Debug("api request",
		slog.String("method", spec.method),
		slog.String("path", spec.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	settled := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Hard policy: an authorization failure invalidates the stored pair
		// no matter which call site triggered the request.
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.Error("clear credentials after auth failure", slog.Any("error", clearErr))
		}
		c.notifyAuthFailure()
	}

	if !settled.OK() {
		return settled, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return settled, nil
}

func (c *Client) attachBearer(ctx context.Context, req *http.Request) {
	pair, err := c.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, credentials.ErrNoCredentials) {
			c.logger.Warn("read credentials", slog.Any("error", err))
		}
		return
	}
	if pair.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}
}
