// Package transport fetches models over HTTP. It performs the round trip,
// parses the body by content type and hands it to a decoder function,
// keeping network failures and decode failures apart:
//
//	repo, err := transport.Fetch(ctx, client, transport.Request{
//	    Method: transport.MethodGet,
//	    URL:    "/repos/octocat/Hello-World",
//	}, DecodeRepo)
//	switch {
//	case transport.IsTransportError(err):
//	    // the server was unreachable or answered with an error status
//	case transport.IsDecodeError(err):
//	    // the body did not match the model
//	}
package transport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mcncl/gloss/internal/cache"
	"github.com/mcncl/gloss/internal/encoder"
	"github.com/mcncl/gloss/internal/errors"
	"github.com/mcncl/gloss/internal/logging"
	"github.com/mcncl/gloss/internal/models"
	"github.com/mcncl/gloss/internal/parser"
	"github.com/vmihailenco/msgpack/v5"
)

// Request describes one HTTP call.
type Request struct {
	Method Method
	// URL is absolute, or relative to the client's base URL.
	URL string
	// Params go into the query string for GET, HEAD and DELETE and into a
	// form body otherwise, unless Body is set.
	Params  url.Values
	Headers map[string]string
	// Body, when set, is sent as JSON.
	Body models.JSONObject
}

// Response is a completed round trip with a 2xx status.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Cached      bool
}

// Parse reads the body in the format named by its content type, falling
// back to JSON.
func (r *Response) Parse() (models.IntermediateRepresentation, error) {
	format, ok := parser.FormatFromContentType(r.ContentType)
	if !ok {
		format = parser.FormatJSON
	}
	return parser.ParseAs(format, r.Body)
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// Client performs requests. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	headers    map[string]string
	logger     logging.Logger
	cache      cache.Provider
	cacheTTL   time.Duration
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL resolves relative request URLs against base.
func WithBaseURL(base string) Option {
	return func(c *Client) error {
		if base == "" {
			return nil
		}
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("invalid base URL %q: %w", base, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.baseURL = u
		return nil
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) error {
		for k, v := range headers {
			c.headers[k] = v
		}
		return nil
	}
}

// WithTimeout bounds each round trip. It replaces the timeout of any
// client set with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.httpClient.Timeout = d
		return nil
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) error {
		c.logger = logging.OrNop(l)
		return nil
	}
}

// WithCache caches successful GET bodies in p for ttl.
func WithCache(p cache.Provider, ttl time.Duration) Option {
	return func(c *Client) error {
		c.cache = p
		c.cacheTTL = ttl
		return nil
	}
}

// New creates a Client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    map[string]string{"Accept": parser.FormatJSON.ContentType()},
		logger:     logging.NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.NewConfigError("invalid transport option", err)
		}
	}
	return c, nil
}

// Do performs req. Network failures and non-2xx statuses are returned as
// transport errors; a Body that cannot be marshalled is an encode error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = MethodGet
	}

	target, err := c.resolve(req.URL, method, req.Params)
	if err != nil {
		return nil, errors.NewTransportError(fmt.Sprintf("invalid request URL %q", req.URL), err)
	}
	headers := c.requestHeaders(req)
	key := cacheKey(method, target, headers)

	if c.cacheable(method, req) {
		if resp, ok := c.lookup(ctx, key); ok {
			c.logger.Debug("cache hit", logging.Fields{"url": target})
			return resp, nil
		}
	}

	body, contentType, err := requestBody(method, req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method.String(), target, body)
	if err != nil {
		return nil, errors.NewTransportError(fmt.Sprintf("failed to build %s request", method), err)
	}
	httpReq.Header = headers
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("request failed", logging.Fields{"method": method.String(), "url": target, "error": err.Error()})
		return nil, errors.NewTransportError(fmt.Sprintf("%s %s failed", method, target), err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.NewTransportError(fmt.Sprintf("failed to read response body from %s", target), err)
	}
	c.logger.Debug("response received", logging.Fields{
		"method":   method.String(),
		"url":      target,
		"status":   httpResp.StatusCode,
		"bytes":    len(data),
		"duration": time.Since(start).String(),
	})

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, errors.NewTransportError(
			fmt.Sprintf("%s %s returned %s", method, target, httpResp.Status),
			&StatusError{StatusCode: httpResp.StatusCode, Status: httpResp.Status, Body: data},
		)
	}

	resp := &Response{
		StatusCode:  httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Body:        data,
	}
	if c.cacheable(method, req) {
		c.store(ctx, key, resp)
	}
	return resp, nil
}

func (c *Client) resolve(raw string, method Method, params url.Values) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if c.baseURL != nil && !u.IsAbs() {
		u = c.baseURL.ResolveReference(&url.URL{
			Path:     strings.TrimPrefix(u.Path, "/"),
			RawQuery: u.RawQuery,
		})
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("URL is not absolute and no base URL is configured")
	}
	if method.paramsInQuery() && len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func requestBody(method Method, req Request) (io.Reader, string, error) {
	if req.Body != nil {
		data, err := encoder.Marshal(req.Body)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), parser.FormatJSON.ContentType(), nil
	}
	if !method.paramsInQuery() && len(req.Params) > 0 {
		return strings.NewReader(req.Params.Encode()), "application/x-www-form-urlencoded", nil
	}
	return nil, "", nil
}

// requestHeaders merges the client headers with the per-request ones, the
// latter winning.
func (c *Client) requestHeaders(req Request) http.Header {
	h := make(http.Header, len(c.headers)+len(req.Headers))
	for k, v := range c.headers {
		h.Set(k, v)
	}
	for k, v := range req.Headers {
		h.Set(k, v)
	}
	return h
}

func (c *Client) cacheable(method Method, req Request) bool {
	return c.cache != nil && method == MethodGet && req.Body == nil
}

// cacheKey scopes a cached response to the method, the resolved URL and every
// header sent with it. A response is never served to a request with other
// headers.
func cacheKey(method Method, target string, headers http.Header) string {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)

	sum := sha256.New()
	for _, k := range names {
		for _, v := range headers[k] {
			_, _ = fmt.Fprintf(sum, "%s:%s\n", k, v)
		}
	}
	return method.String() + " " + target + " " + hex.EncodeToString(sum.Sum(nil))
}

// cachedResponse is the envelope stored in the cache.
type cachedResponse struct {
	ContentType string `msgpack:"ct"`
	Body        []byte `msgpack:"b"`
}

func (c *Client) lookup(ctx context.Context, key string) (*Response, bool) {
	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", logging.Fields{"key": key, "error": err.Error()})
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var entry cachedResponse
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("dropping corrupt cache entry", logging.Fields{"key": key, "error": err.Error()})
		_ = c.cache.Del(ctx, key)
		return nil, false
	}
	return &Response{
		StatusCode:  http.StatusOK,
		ContentType: entry.ContentType,
		Body:        entry.Body,
		Cached:      true,
	}, true
}

func (c *Client) store(ctx context.Context, key string, resp *Response) {
	data, err := msgpack.Marshal(cachedResponse{ContentType: resp.ContentType, Body: resp.Body})
	if err != nil {
		c.logger.Warn("cache encode failed", logging.Fields{"key": key, "error": err.Error()})
		return
	}
	if _, err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Warn("cache write failed", logging.Fields{"key": key, "error": err.Error()})
	}
}
