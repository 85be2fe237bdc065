package kaapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/jamesprial/go-ka-api-wrapper/internal"
	"github.com/jamesprial/go-ka-api-wrapper/pkg/cookies"
	kaerrors "github.com/jamesprial/go-ka-api-wrapper/pkg/errors"
)

const (
	// DefaultBaseURL is the default Khan Academy base URL
	DefaultBaseURL = "https://www.khanacademy.org/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-ka-api-wrapper/0.1"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
	// FKeyLength is the length of a generated CSRF token
	FKeyLength = internal.FKeyLength
)

// Response is a fully read HTTP response returned by the request facade.
type Response = internal.Response

// RateLimitConfig controls optional client-side throttling.
type RateLimitConfig = internal.RateLimitConfig

// Config holds the configuration for the Khan Academy client.
// Every field is optional. Credentials are never part of the configuration;
// they are passed to Login once and dropped.
//
// Example:
//
//	client, err := kaapi.NewClient(&kaapi.Config{
//		UserAgent: "my-bot/1.0",
//		Logger:    slog.Default(),
//	})
type Config struct {
	// BaseURL every relative endpoint is resolved against.
	// Defaults to DefaultBaseURL. Point it at an httptest.Server in tests.
	BaseURL string `validate:"required,url"`

	// UserAgent identifies your application to Khan Academy.
	// Defaults to DefaultUserAgent.
	UserAgent string `validate:"required,max=256"`

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout. The client is copied before its
	// transport is instrumented, so the value you pass is never modified.
	HTTPClient *http.Client `validate:"-"`

	// Logger for structured diagnostics.
	// Optional. Cookie values, fkeys and passwords are never logged.
	Logger *slog.Logger `validate:"-"`

	// RateLimit enables client-side throttling when non-nil.
	RateLimit *RateLimitConfig

	// Metrics registers request counters and latency histograms when non-nil.
	Metrics prometheus.Registerer `validate:"-"`

	// TracerProvider produces a client span per request when non-nil.
	TracerProvider trace.TracerProvider `validate:"-"`

	// Rand feeds fkey generation. Defaults to crypto/rand.
	Rand io.Reader `validate:"-"`

	// Now supplies the client_dt timestamp sent with program writes.
	// Defaults to time.Now.
	Now func() time.Time `validate:"-"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Client is the main Khan Academy client.
//
// A Client holds no session. Login returns a cookies.Session which callers pass
// to every authenticated call, so one Client can serve many accounts
// concurrently.
type Client struct {
	client *internal.Client
	auth   *internal.Authenticator
	parser *internal.Parser
	logger *slog.Logger
	now    func() time.Time
}

// NewClient creates a new Khan Academy client with the provided configuration.
// It validates the configuration and sets up the transport stack.
//
// Returns an *errors.ConfigError if:
//   - config is nil
//   - BaseURL is not an absolute URL
//   - UserAgent is invalid
//   - the metrics collectors cannot be registered
//
// NewClient performs no network I/O.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &kaerrors.ConfigError{Message: "config cannot be nil"}
	}
	cfg := *config

	// Set defaults
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	httpClient, err := instrument(cfg.HTTPClient, cfg.Metrics, cfg.TracerProvider)
	if err != nil {
		return nil, err
	}

	client, err := internal.NewClient(httpClient, cfg.BaseURL, cfg.UserAgent, cfg.RateLimit, cfg.Logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: client,
		auth:   internal.NewAuthenticator(client, cfg.Rand, cfg.Logger),
		parser: internal.NewParser(),
		logger: cfg.Logger,
		now:    cfg.Now,
	}, nil
}

func validateConfig(cfg *Config) error {
	if err := configValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &kaerrors.ConfigError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed %q validation", fe.Tag()),
			}
		}
		return &kaerrors.ConfigError{Message: err.Error()}
	}
	if err := internal.ValidateUserAgent(cfg.UserAgent); err != nil {
		return &kaerrors.ConfigError{Field: "UserAgent", Message: err.Error()}
	}
	return nil
}

// instrument copies hc and wraps its transport with the configured metrics
// and tracing layers.
func instrument(hc *http.Client, reg prometheus.Registerer, tp trace.TracerProvider) (*http.Client, error) {
	copied := *hc
	rt := copied.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	if reg != nil {
		var err error
		rt, err = internal.InstrumentMetrics(rt, reg)
		if err != nil {
			return nil, &kaerrors.ConfigError{Field: "Metrics", Message: err.Error()}
		}
	}
	if tp != nil {
		rt = internal.InstrumentTracing(rt, tp)
	}

	copied.Transport = rt
	return &copied, nil
}

// Login exchanges an identifier (username or email) and password for a logged-in
// Session. Exactly two requests are made and nothing is retried.
//
// Returns an error matching:
//   - errors.ErrInvalidArgument if identifier or password is empty (no request is made)
//   - errors.ErrSessionUnavailable if the login page set no cookies
//   - errors.ErrAuthenticationFailed if the login response set no cookies
//
// A transport failure during credential submission is an *errors.RequestError
// that unwraps to the original error.
func (c *Client) Login(ctx context.Context, identifier, password string) (cookies.Session, error) {
	return c.auth.Login(ctx, identifier, password)
}

// SessionCookies loads the login page anonymously and returns the raw
// Set-Cookie lines it produced.
func (c *Client) SessionCookies(ctx context.Context) ([]string, error) {
	return c.auth.SessionCookies(ctx)
}

// Get sends an authenticated GET request. A zero session sends an anonymous request.
func (c *Client) Get(ctx context.Context, session cookies.Session, url string, custom http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodGet, session, url, nil, custom)
}

// Post sends an authenticated POST request with a JSON body.
func (c *Client) Post(ctx context.Context, session cookies.Session, url string, body any, custom http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodPost, session, url, body, custom)
}

// Put sends an authenticated PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, session cookies.Session, url string, body any, custom http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodPut, session, url, body, custom)
}

// Delete sends an authenticated DELETE request.
func (c *Client) Delete(ctx context.Context, session cookies.Session, url string, custom http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, session, url, nil, custom)
}

// Do sends a request with the headers session requires and returns the fully
// read response.
//
// url may be absolute or relative to the configured BaseURL. The status code
// is not interpreted and nothing is retried. Transport errors are returned
// exactly as the http.Client reported them. Mutating methods fail with
// errors.ErrInvalidArgument when a non-zero session has no fkey cookie.
func (c *Client) Do(ctx context.Context, method string, session cookies.Session, url string, body any, custom http.Header) (*Response, error) {
	return c.client.Send(ctx, method, url, body, session, custom)
}

// AuthenticatedHeader builds the headers of an authenticated request: the Cookie
// header, the X-KA-FKey CSRF header and JSON defaults, with custom entries
// overriding them. A missing fkey cookie is an error only when mutating is true.
func AuthenticatedHeader(session cookies.Session, custom http.Header, mutating bool) (http.Header, error) {
	return internal.AuthenticatedHeader(session, custom, mutating)
}

// GenerateFKey returns a random CSRF token of FKeyLength alphanumeric characters
// read from r. A nil r uses crypto/rand.
func GenerateFKey(r io.Reader) (string, error) {
	return internal.GenerateFKey(r)
}

// send performs one wrapper request. Transport failures are wrapped in an
// *errors.RequestError naming the operation.
func (c *Client) send(ctx context.Context, operation, method string, session cookies.Session, ref string, body any) (*Response, error) {
	resp, err := c.client.Send(ctx, method, ref, body, session, nil)
	if err != nil {
		var argErr *kaerrors.ArgumentError
		if errors.As(err, &argErr) {
			return nil, err
		}
		return nil, &kaerrors.RequestError{Operation: operation, URL: ref, Err: err}
	}
	return resp, nil
}

// graphQL posts a GraphQL operation and decodes its data into out.
func (c *Client) graphQL(ctx context.Context, session cookies.Session, operation, query string, variables any, params url.Values, out any) error {
	ref := internal.GraphQLPath(operation)
	if len(params) > 0 {
		ref += "?" + params.Encode()
	}

	body := internal.GraphQLRequest{
		OperationName: operation,
		Variables:     variables,
		Query:         query,
	}
	resp, err := c.send(ctx, operation, http.MethodPost, session, ref, body)
	if err != nil {
		return err
	}
	return c.parser.ParseGraphQLResponse(operation, resp, out)
}

// getJSON fetches a REST endpoint and decodes its body into out.
func (c *Client) getJSON(ctx context.Context, session cookies.Session, operation, ref string, out any) error {
	resp, err := c.send(ctx, operation, http.MethodGet, session, ref, nil)
	if err != nil {
		return err
	}
	return c.parser.ParseResponse(operation, resp, out)
}

// clientDT formats the current time the way the web client does for client_dt.
func (c *Client) clientDT() string {
	return c.now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// englishParams is the lang=en query shared by most internal endpoints.
func englishParams() url.Values {
	return url.Values{"lang": {"en"}}
}
