package stove

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/icholy/digest"
	"go.uber.org/zap"

	"github.com/afernandezluc/netflame/internal/logging"
)

const (
	// DefaultCGIPath is the CGI endpoint exposed by the stove firmware
	DefaultCGIPath = "/recepcion_datos_4.cgi"

	// DefaultTimeout is the per-attempt HTTP request timeout
	DefaultTimeout = 5 * time.Second

	// DefaultRetries is the default number of retries after a failed
	// attempt (total attempts = retries + 1)
	DefaultRetries = 2

	// DefaultRetryDelay is the fixed pause between retry attempts
	DefaultRetryDelay = 2100 * time.Millisecond

	// operationField is the form field carrying the operation identifier
	operationField = "idOperacion"
)

// AuthMode selects the HTTP authentication scheme used against the device
type AuthMode int

const (
	AuthNone AuthMode = iota
	AuthBasic
	AuthDigest
)

// Client sends numeric operations to a stove controller CGI endpoint and
// parses the key=value text it answers with.
//
// A Client owns its session cookie jar; the jar is internally synchronized,
// but calls are otherwise not ordered relative to each other, so callers
// that need strict ordering must serialize their own calls.
type Client struct {
	baseURL    string
	cgiPath    string
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	authMode   AuthMode
	username   string
	password   string
	session    bool
	cookies    map[string]string
	errorKeys  []string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client) error

// WithCGIPath overrides the CGI endpoint path. A missing leading slash is
// added.
func WithCGIPath(path string) Option {
	return func(c *Client) error {
		if path == "" {
			return fmt.Errorf("cgi path must not be empty")
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		c.cgiPath = path
		return nil
	}
}

// WithTimeout sets the per-attempt request timeout. Default is 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		c.timeout = d
		return nil
	}
}

// WithRetries sets how many times a failed attempt is retried.
// Default is 2 (three attempts in total).
func WithRetries(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("retries must not be negative")
		}
		c.retries = n
		return nil
	}
}

// WithRetryDelay sets the fixed pause between retry attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("retry delay must not be negative")
		}
		c.retryDelay = d
		return nil
	}
}

// WithBasicAuth enables HTTP Basic authentication.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) error {
		if username == "" {
			return fmt.Errorf("basic auth requires a username")
		}
		c.authMode = AuthBasic
		c.username = username
		c.password = password
		return nil
	}
}

// WithDigestAuth enables HTTP Digest authentication.
func WithDigestAuth(username, password string) Option {
	return func(c *Client) error {
		if username == "" {
			return fmt.Errorf("digest auth requires a username")
		}
		c.authMode = AuthDigest
		c.username = username
		c.password = password
		return nil
	}
}

// WithSession controls whether cookies set by the device are persisted
// across calls. Enabled by default.
func WithSession(enabled bool) Option {
	return func(c *Client) error {
		c.session = enabled
		return nil
	}
}

// WithCookies seeds the session jar, useful when the web UI login cookie
// is required. Implies session mode.
func WithCookies(cookies map[string]string) Option {
	return func(c *Client) error {
		c.session = true
		c.cookies = cookies
		return nil
	}
}

// WithErrorKeys overrides the list of params keys checked for the device
// error code. The first key whose value parses as an integer wins.
func WithErrorKeys(keys ...string) Option {
	return func(c *Client) error {
		if len(keys) == 0 {
			return fmt.Errorf("at least one error key is required")
		}
		c.errorKeys = keys
		return nil
	}
}

// WithLogger sets a structured logger for per-attempt debug and warning
// logs. Defaults to the package-level logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client. The configured
// timeout and cookie jar are still applied to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// NewClient creates a client for the device at baseURL, e.g.
// "http://192.168.1.50". Trailing slashes are removed.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL must not be empty")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cgiPath:    DefaultCGIPath,
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		session:    true,
		errorKeys:  defaultErrorKeys,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if c.logger == nil {
		c.logger = logging.GetLogger()
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	c.httpClient.Timeout = c.timeout

	if c.authMode == AuthDigest {
		c.httpClient.Transport = &digest.Transport{
			Username:  c.username,
			Password:  c.password,
			Transport: c.httpClient.Transport,
		}
	}

	if c.session && c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}

	if len(c.cookies) > 0 {
		endpoint, err := url.Parse(c.Endpoint())
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
		}
		seed := make([]*http.Cookie, 0, len(c.cookies))
		for name, value := range c.cookies {
			seed = append(seed, &http.Cookie{Name: name, Value: value})
		}
		c.httpClient.Jar.SetCookies(endpoint, seed)
	}

	return c, nil
}

// Endpoint returns the full CGI URL derived from the base URL and path
func (c *Client) Endpoint() string {
	return c.baseURL + c.cgiPath
}

// SendOperation sends an operation identified only by idOperacion.
func (c *Client) SendOperation(ctx context.Context, operationID int) (*Response, error) {
	return c.SendOperationParams(ctx, operationID, nil)
}

// SendOperationParams sends an operation with extra form parameters merged
// alongside idOperacion (e.g. int_rx for the clock operations).
//
// Exactly one of four outcomes is returned: a Response, or an *Error of
// kind transport, protocol or operation. Transport failures are retried
// with a fixed delay up to the configured bound; protocol and operation
// failures surface immediately because the device already answered
// coherently and a retry would only mask a real fault.
func (c *Client) SendOperationParams(ctx context.Context, operationID int, extra map[string]string) (*Response, error) {
	if operationID <= 0 {
		return nil, NewProtocolError(fmt.Sprintf("invalid operation id %d: must be a positive integer", operationID), nil)
	}

	form := url.Values{}
	form.Set(operationField, strconv.Itoa(operationID))
	for k, v := range extra {
		form.Set(k, v)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retries+1; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, NewTransportError("request cancelled", 0, ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, NewTransportError("request cancelled", 0, err)
		}

		raw, err := c.attempt(ctx, form)
		if err != nil {
			lastErr = err
			c.logger.Warn("operation attempt failed",
				zap.Int("operation", operationID),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", c.retries+1),
				zap.Error(err),
			)
			continue
		}

		logging.LogResponseBody(operationID, raw)

		resp, err := parseResponse(operationID, raw, c.errorKeys)
		if err != nil {
			return nil, err
		}
		if !resp.StatusOK {
			code := 0
			if resp.ErrorCode != nil {
				code = *resp.ErrorCode
			}
			return nil, NewOperationError(code,
				fmt.Sprintf("operation %d failed with error code %d", operationID, code))
		}
		return resp, nil
	}

	return nil, lastErr
}

// attempt performs exactly one HTTP exchange and returns the raw body.
// Retry policy lives in the caller; this never retries.
func (c *Client) attempt(ctx context.Context, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", NewTransportError("failed to build request", 0, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.authMode == AuthBasic {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", NewTransportError(
			"device requires authentication (configure basic or digest credentials, or session cookies)",
			resp.StatusCode, nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", NewTransportError(
			fmt.Sprintf("unexpected HTTP status %d from %s", resp.StatusCode, c.Endpoint()),
			resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewTransportError("failed to read response body", resp.StatusCode, err)
	}
	return string(body), nil
}
