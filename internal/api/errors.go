package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Common API errors that can be checked with errors.Is.
var (
	// ErrBadRequest indicates the server rejected the request body, e.g. a
	// blob it could not decrypt.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthorized indicates wrong credentials or a missing session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the endpoint or resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrInvalidResponse indicates a 2xx response whose body does not have
	// the expected shape.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrUnsupportedAlgorithm indicates the server advertises a key
	// algorithm other than P-256.
	ErrUnsupportedAlgorithm = errors.New("unsupported key algorithm")
)

// APIError represents an HTTP error from the server.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		if e.Message != "" {
			return fmt.Sprintf("API error %d: %s (request_id: %s)", e.StatusCode, e.Message, e.RequestID)
		}
		return fmt.Sprintf("API error %d (request_id: %s)", e.StatusCode, e.RequestID)
	}
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return target == ErrBadRequest
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusTooManyRequests:
		return target == ErrRateLimited
	}
	return false
}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
