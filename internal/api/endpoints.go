package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prettyserver/passcrypt/internal/crypto"
)

// Endpoint paths.
const (
	PathPublicKey        = "/api/crypto/public-key"
	PathLogin            = "/api/auth/login"
	PathChangePassword   = "/api/auth/changepassword"
	PathDisableTwoFactor = "/api/auth/2fa/disable"
	PathLogout           = "/api/auth/logout"
	PathAuthStatus       = "/api/auth/status"
)

// GetPublicKey retrieves the server's encryption key. The response must be
// a JSON object with a non-empty "public_key" string; an "algorithm" field,
// if present, must name P-256. The hex itself is not validated here.
func (c *Client) GetPublicKey(ctx context.Context) (*PublicKeyResponse, error) {
	var result PublicKeyResponse
	if err := c.Do(ctx, http.MethodGet, PathPublicKey, nil, &result); err != nil {
		return nil, err
	}
	if result.PublicKey == "" {
		return nil, fmt.Errorf("%w: missing public_key", ErrInvalidResponse)
	}
	if result.Algorithm != "" && result.Algorithm != crypto.Algorithm {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, result.Algorithm)
	}
	return &result, nil
}

// FetchPublicKey returns the hex-encoded server public key.
func (c *Client) FetchPublicKey(ctx context.Context) (string, error) {
	resp, err := c.GetPublicKey(ctx)
	if err != nil {
		return "", err
	}
	return resp.PublicKey, nil
}

// Login submits a username and an encrypted password. A correct password
// on an account with 2FA enabled and no TOTPCode yields a response with
// status "require_2fa" rather than an error.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*StatusResponse, error) {
	var result StatusResponse
	if err := c.Do(ctx, http.MethodPost, PathLogin, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ChangePassword changes the password of the logged-in user.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*StatusResponse, error) {
	var result StatusResponse
	if err := c.Do(ctx, http.MethodPost, PathChangePassword, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DisableTwoFactor turns off 2FA for the logged-in user.
func (c *Client) DisableTwoFactor(ctx context.Context, req DisableTwoFactorRequest) (*StatusResponse, error) {
	var result StatusResponse
	if err := c.Do(ctx, http.MethodPost, PathDisableTwoFactor, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
