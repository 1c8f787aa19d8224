package passcrypt

import (
	"errors"
	"fmt"

	"github.com/prettyserver/passcrypt/internal/api"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrKeyFetch is returned when the server public key cannot be obtained.
	ErrKeyFetch = errors.New("public key fetch failed")

	// ErrInvalidPublicKey is returned when the server public key is not a
	// usable P-256 point.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrRandomness is returned when the random source fails.
	ErrRandomness = errors.New("random source unavailable")

	// ErrEncryption is returned when a cryptographic step fails.
	ErrEncryption = errors.New("encryption failed")

	// ErrMissingBaseURL is returned when no base URL is provided.
	ErrMissingBaseURL = errors.New("base URL is required")

	// ErrMissingCredentials is returned when a username or password is empty.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrBadRequest is returned when the server rejects a request, e.g. a
	// password blob it cannot decrypt.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized is returned for wrong credentials or a missing session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the endpoint or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// PasscryptError is implemented by all errors returned by this package.
type PasscryptError interface {
	error
	PasscryptError() // marker method
}

// Encryption stages reported by EncryptionError.
const (
	StageKeyGeneration = "key-generation"
	StageKeyAgreement  = "key-agreement"
	StageKeyDerivation = "key-derivation"
	StageSeal          = "seal"
)

// KeyFetchError indicates the server public key could not be obtained:
// transport failure, non-2xx status, malformed response or an invalid key.
type KeyFetchError struct {
	Err error
}

func (e *KeyFetchError) Error() string {
	return fmt.Sprintf("public key fetch failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyFetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyFetchError) Is(target error) bool {
	return target == ErrKeyFetch
}

// PasscryptError implements the PasscryptError interface.
func (e *KeyFetchError) PasscryptError() {}

// InvalidPublicKeyError indicates bytes that do not encode an uncompressed
// P-256 point on the curve.
type InvalidPublicKeyError struct {
	Reason string
	Err    error
}

func (e *InvalidPublicKeyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid public key: %s", e.Reason)
	}
	return "invalid public key"
}

// Unwrap returns the underlying error.
func (e *InvalidPublicKeyError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *InvalidPublicKeyError) Is(target error) bool {
	return target == ErrInvalidPublicKey
}

// PasscryptError implements the PasscryptError interface.
func (e *InvalidPublicKeyError) PasscryptError() {}

// RandomnessError indicates the random source failed while generating the
// ephemeral key.
type RandomnessError struct {
	Err error
}

func (e *RandomnessError) Error() string {
	return "random source unavailable"
}

// Unwrap returns the underlying error.
func (e *RandomnessError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *RandomnessError) Is(target error) bool {
	return target == ErrRandomness
}

// PasscryptError implements the PasscryptError interface.
func (e *RandomnessError) PasscryptError() {}

// EncryptionError indicates a failure in key agreement, derivation or
// sealing. The message names the stage only.
type EncryptionError struct {
	Stage string
	Err   error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("encryption failed at %s", e.Stage)
}

// Unwrap returns the underlying error.
func (e *EncryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *EncryptionError) Is(target error) bool {
	return target == ErrEncryption
}

// PasscryptError implements the PasscryptError interface.
func (e *EncryptionError) PasscryptError() {}

// APIError represents an HTTP error from the server.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string // if returned by server
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

// PasscryptError implements the PasscryptError interface.
func (e *APIError) PasscryptError() {}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 400:
		return target == ErrBadRequest
	case 401:
		return target == ErrUnauthorized
	case 404:
		return target == ErrNotFound
	case 429:
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

// PasscryptError implements the PasscryptError interface.
func (e *NetworkError) PasscryptError() {}

// wrapError converts internal API errors to public errors.
// This ensures that errors.Is() checks work with public sentinel errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			RequestID:  apiErr.RequestID,
		}
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return &NetworkError{
			Err:     netErr.Err,
			URL:     netErr.URL,
			Attempt: netErr.Attempt,
		}
	}

	return err
}
