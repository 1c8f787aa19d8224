package passcrypt

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	retryOn    []int
	cache      *PublicKeyCache
	logger     *zerolog.Logger

	encryptor encryptorConfig
}

// Option configures a Client. Both the options below and every
// EncryptorOption satisfy it.
type Option interface {
	applyClient(*clientConfig)
}

type clientOption func(*clientConfig)

func (o clientOption) applyClient(c *clientConfig) {
	o(c)
}

// WithBaseURL sets the server origin, e.g. "https://media.example.com".
// It is required.
func WithBaseURL(url string) Option {
	return clientOption(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithHTTPClient sets a custom HTTP client. Without one, the client keeps
// its own cookie jar so that the session from Login is used by later calls.
func WithHTTPClient(client *http.Client) Option {
	return clientOption(func(c *clientConfig) {
		c.httpClient = client
	})
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return clientOption(func(c *clientConfig) {
		c.timeout = timeout
	})
}

// WithRetries sets how often the public key request is retried on
// transient failures. Password-carrying requests are never retried.
// The default is 0.
func WithRetries(count int) Option {
	return clientOption(func(c *clientConfig) {
		c.retries = count
	})
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
func WithRetryOn(statusCodes []int) Option {
	return clientOption(func(c *clientConfig) {
		c.retryOn = statusCodes
	})
}

// WithPublicKeyCache shares cache between clients.
func WithPublicKeyCache(cache *PublicKeyCache) Option {
	return clientOption(func(c *clientConfig) {
		c.cache = cache
	})
}

// WithLogger sets the logger used by the client and its components.
func WithLogger(logger zerolog.Logger) Option {
	return clientOption(func(c *clientConfig) {
		c.logger = &logger
	})
}
