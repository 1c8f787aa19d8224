// Package api is the HTTP transport for the password endpoints. It handles
// request/response serialization, request IDs, a session cookie jar and
// optional retries for GET requests.
//
// # Client Creation
//
// The package provides two ways to create a client:
//
//   - [NewClient]: Struct-based configuration.
//   - [New]: Functional options.
//
// Both require a base URL with an http or https scheme.
//
// # Retry Behavior
//
// Retries are off by default. When enabled with [Config.MaxRetries], only
// GET requests are retried, on network errors and on these status codes
// unless [Config.RetryOn] says otherwise:
//
//   - 408 Request Timeout
//   - 429 Too Many Requests
//   - 500 Internal Server Error
//   - 502 Bad Gateway
//   - 503 Service Unavailable
//   - 504 Gateway Timeout
//
// POST requests carry one-time encrypted passwords and are sent once.
//
// # Error Handling
//
// Non-2xx responses become [*APIError], whose message is taken from the
// server's "detail" field. Use errors.Is with [ErrBadRequest],
// [ErrUnauthorized], [ErrNotFound] or [ErrRateLimited]. Transport failures
// become [*NetworkError].
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use.
package api
