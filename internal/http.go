package internal

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
	"golang.org/x/time/rate"

	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
)

// Client manages communication with Khan Academy.
// It holds no session state; every request carries the Session it was built with.
type Client struct {
	client    *http.Client
	BaseURL   *url.URL
	UserAgent string

	logger  *slog.Logger
	limiter *rate.Limiter
}

// RateLimitConfig controls how requests are throttled before reaching Khan Academy.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64 `validate:"gte=0"`
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int `validate:"gte=0"`
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	SecondsPerMinute         = 60.0

	// maxErrorBody bounds how much of a failed response body ends up in an error.
	maxErrorBody = 512
)

// Response is a fully read HTTP response. The body is already closed, so headers
// such as Set-Cookie can be inspected at leisure.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// SetCookies returns the raw Set-Cookie lines of the response.
func (r *Response) SetCookies() []string {
	return cookies.SetCookieLines(r.Header)
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// NewClient returns a new Khan Academy HTTP client.
// If a nil httpClient is provided, http.DefaultClient will be used.
// A nil rateCfg disables client-side throttling.
func NewClient(httpClient *http.Client, baseURL string, userAgent string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &kaerrors.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &kaerrors.ConfigError{Field: "BaseURL", Message: fmt.Sprintf("%q is not an absolute URL", baseURL)}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	c := &Client{
		client:    httpClient,
		BaseURL:   parsedURL,
		UserAgent: userAgent,
		logger:    logger,
	}
	if rateCfg != nil {
		c.limiter = buildLimiter(*rateCfg)
	}

	return c, nil
}

// ResolveURL resolves ref against BaseURL. Absolute references are kept as they are.
func (c *Client) ResolveURL(ref string) (*url.URL, error) {
	u, err := c.BaseURL.Parse(ref)
	if err != nil {
		return nil, &kaerrors.ArgumentError{Field: "url", Err: err}
	}
	return u, nil
}

// NewRequest creates a request for ref carrying the headers session requires.
//
// A zero session produces an anonymous request. Otherwise the Cookie and
// X-KA-FKey headers are attached; mutating methods fail without an fkey cookie.
// body may be nil, []byte, json.RawMessage, an io.Reader, or any value that is
// JSON-encoded.
func (c *Client) NewRequest(ctx context.Context, method, ref string, body any, session cookies.Session, custom http.Header) (*http.Request, error) {
	u, err := c.ResolveURL(ref)
	if err != nil {
		return nil, err
	}

	reader, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	mutating := isMutating(method)
	var header http.Header
	if session.IsZero() {
		header = anonymousHeader(custom, mutating)
	} else {
		header, err = AuthenticatedHeader(session, custom, mutating)
		if err != nil {
			return nil, err
		}
	}
	if header.Get("User-Agent") == "" && c.UserAgent != "" {
		header.Set("User-Agent", c.UserAgent)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, &kaerrors.ArgumentError{Field: "request", Err: err}
	}
	req.Header = header

	return req, nil
}

// Do sends req and reads the whole response. Transport failures are returned
// exactly as the underlying http.Client reported them; the status code is not
// interpreted.
func (c *Client) Do(req *http.Request) (*Response, error) {
	if err := c.waitForRateLimit(req.Context()); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("khan academy request failed",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("khan academy request",
		"request_id", requestID,
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"set_cookie_count", len(resp.Header.Values("Set-Cookie")),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Send builds and executes a request in one step.
func (c *Client) Send(ctx context.Context, method, ref string, body any, session cookies.Session, custom http.Header) (*Response, error) {
	req, err := c.NewRequest(ctx, method, ref, body, session, custom)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// CheckStatus converts a non-2xx response into an *errors.APIError.
func CheckStatus(operation string, resp *Response) error {
	if resp.OK() {
		return nil
	}
	body := resp.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &kaerrors.APIError{Operation: operation, StatusCode: resp.StatusCode, Body: string(body)}
}

func anonymousHeader(custom http.Header, mutating bool) http.Header {
	h := make(http.Header, 3+len(custom))
	h.Set("Accept", "application/json")
	if mutating {
		h.Set("Content-Type", "application/json")
	}
	for k, v := range custom {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	return h
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, &kaerrors.ArgumentError{Field: "body", Err: err}
		}
		return bytes.NewReader(data), nil
	}
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	return rate.NewLimiter(rate.Limit(requestsPerMinute/SecondsPerMinute), burst)
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
