package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 0
	DefaultRetryDelay = 500 * time.Millisecond

	// RequestIDHeader carries a per-attempt request identifier.
	RequestIDHeader = "X-Request-ID"

	userAgent = "passcrypt-go/1"
)

// Client is the HTTP API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	retry      *RetryConfig
	logger     zerolog.Logger
}

// Config holds the configuration for creating a new API client.
type Config struct {
	// BaseURL is the server origin, e.g. "https://media.example.com".
	BaseURL string
	// HTTPClient is used for all requests. When nil a client with a cookie
	// jar and Timeout is created so that login sessions carry over to
	// later calls.
	HTTPClient *http.Client
	// Timeout applies only to the default HTTP client.
	Timeout time.Duration
	// MaxRetries is the number of retries for GET requests. Other methods
	// are never retried.
	MaxRetries int
	// RetryDelay is the delay before the first retry; it doubles after
	// each attempt.
	RetryDelay time.Duration
	// RetryOn lists the status codes that trigger a retry. Defaults to
	// 408, 429, 500, 502, 503 and 504.
	RetryOn []int
	// Logger receives debug output for each attempt.
	Logger *zerolog.Logger
}

// NewClient creates a new API client from a Config.
func NewClient(cfg Config) (*Client, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Jar:     jar,
		}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	retry := DefaultRetryConfig()
	retry.MaxRetries = maxRetries
	retry.BaseDelay = retryDelay
	if len(cfg.RetryOn) > 0 {
		retry.RetryableOn = statusSet(cfg.RetryOn)
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		retry:      retry,
		logger:     logger.With().Str("component", "api").Logger(),
	}, nil
}

// Option configures the API client.
type Option func(*Config)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithRetries sets the number of retries for GET requests.
func WithRetries(retries int) Option {
	return func(c *Config) {
		c.MaxRetries = retries
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) {
		c.RetryDelay = d
	}
}

// WithRetryOn sets the status codes that trigger a retry.
func WithRetryOn(statusCodes []int) Option {
	return func(c *Config) {
		c.RetryOn = statusCodes
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = &logger
	}
}

// New creates a new API client with functional options.
func New(opts ...Option) (*Client, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewClient(cfg)
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// SetHTTPClient sets a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Do sends a JSON request and decodes the JSON response into result.
// result may be nil. GET requests are retried on network errors and on the
// configured status codes; other methods are sent exactly once.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	maxRetries := 0
	if method == http.MethodGet {
		maxRetries = c.maxRetries
	}

	fullURL := c.baseURL + path

	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, method, fullURL, data)
		if err != nil {
			netErr := &NetworkError{Err: err, URL: fullURL, Attempt: attempt + 1}
			if attempt >= maxRetries || ctx.Err() != nil {
				return netErr
			}
			c.logger.Debug().Err(err).Str("url", fullURL).Int("attempt", attempt+1).Msg("retrying after network error")
			if err := c.retry.Wait(ctx, attempt); err != nil {
				return &NetworkError{Err: err, URL: fullURL, Attempt: attempt + 1}
			}
			continue
		}

		if attempt < maxRetries && c.isRetryable(resp.StatusCode) {
			drain(resp)
			c.logger.Debug().Int("status", resp.StatusCode).Str("url", fullURL).Int("attempt", attempt+1).Msg("retrying after status")
			if err := c.retry.Wait(ctx, attempt); err != nil {
				return &NetworkError{Err: err, URL: fullURL, Attempt: attempt + 1}
			}
			continue
		}

		return c.handleResponse(resp, result)
	}
}

func (c *Client) send(ctx context.Context, method, fullURL string, data []byte) (*http.Response, error) {
	var bodyReader io.Reader
	if data != nil {
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("url", fullURL).Str("request_id", requestID).Msg("request")

	return c.httpClient.Do(req)
}

func (c *Client) handleResponse(resp *http.Response, result any) error {
	defer drain(resp)

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// isRetryable reports whether a status code triggers a retry.
func (c *Client) isRetryable(statusCode int) bool {
	return c.retry.RetryableOn(statusCode)
}

func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get(RequestIDHeader),
	}

	var errResp struct {
		Detail    json.RawMessage `json:"detail"`
		Error     string          `json:"error"`
		Message   string          `json:"message"`
		RequestID string          `json:"request_id"`
	}

	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Message = detailMessage(errResp.Detail)
		if apiErr.Message == "" {
			apiErr.Message = errResp.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = errResp.Message
		}
		if errResp.RequestID != "" {
			apiErr.RequestID = errResp.RequestID
		}
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// detailMessage extracts a message from a "detail" field, which is a string
// for handled errors and a list of objects for request validation errors.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(raw)
}

func normalizeBaseURL(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("base URL is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", raw)
	}

	return strings.TrimRight(raw, "/"), nil
}

func statusSet(codes []int) func(int) bool {
	set := make(map[int]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return func(statusCode int) bool {
		_, ok := set[statusCode]
		return ok
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
