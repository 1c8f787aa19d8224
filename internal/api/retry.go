package api

import (
	"context"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryConfig is the backoff policy for idempotent requests.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
	// Multiplier grows the delay after each attempt.
	Multiplier float64
	// Jitter is the fraction (0.0 to 1.0) by which a delay may vary.
	Jitter float64
	// RetryableOn reports whether a status code triggers a retry.
	RetryableOn func(statusCode int) bool
}

// DefaultRetryConfig returns the default policy. Retries are off unless
// MaxRetries is raised.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:  DefaultMaxRetries,
		BaseDelay:   DefaultRetryDelay,
		MaxDelay:    10 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.2,
		RetryableOn: defaultRetryable,
	}
}

func defaultRetryable(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// ShouldRetry reports whether attempt (zero-based) may be followed by
// another one for the given status code.
func (r *RetryConfig) ShouldRetry(attempt int, statusCode int) bool {
	if attempt >= r.MaxRetries {
		return false
	}
	return r.RetryableOn(statusCode)
}

// Delay returns the wait before the retry that follows attempt.
func (r *RetryConfig) Delay(attempt int) time.Duration {
	delay := float64(r.BaseDelay) * math.Pow(r.Multiplier, float64(attempt))
	if r.MaxDelay > 0 && delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}

	if r.Jitter > 0 {
		spread := delay * r.Jitter
		delay = delay - spread + rand.Float64()*2*spread
	}

	return time.Duration(delay)
}

// Wait blocks for Delay(attempt) or until ctx is done.
func (r *RetryConfig) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(r.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
