package passcrypt

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/prettyserver/passcrypt/internal/api"
)

// LoginResult is the server's answer to a login attempt.
type LoginResult struct {
	Status   string
	Message  string
	Username string
}

// RequiresTwoFactor reports whether the password was accepted but a TOTP
// code is needed. Call Login again with the code.
func (r *LoginResult) RequiresTwoFactor() bool {
	return r.Status == api.StatusRequire2FA
}

// Client talks to a server that accepts encrypted passwords. It fetches the
// server key once, encrypts every password before it leaves the process and
// keeps the session cookie from Login.
type Client struct {
	apiClient *api.Client
	keys      *KeyExchangeClient
	encryptor *PasswordEncryptor
	logger    zerolog.Logger
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(cfg *clientConfig, logger zerolog.Logger) (*api.Client, error) {
	apiOpts := []api.Option{
		api.WithBaseURL(cfg.baseURL),
		api.WithLogger(logger),
	}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.timeout))
	}
	if cfg.retries > 0 {
		apiOpts = append(apiOpts, api.WithRetries(cfg.retries))
	}
	if len(cfg.retryOn) > 0 {
		apiOpts = append(apiOpts, api.WithRetryOn(cfg.retryOn))
	}

	return api.New(apiOpts...)
}

// New creates a Client. WithBaseURL is required.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt.applyClient(cfg)
	}

	if cfg.baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	logger := zerolog.Nop()
	if cfg.logger != nil {
		logger = *cfg.logger
	}

	apiClient, err := buildAPIClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	kxOpts := []KeyExchangeOption{
		WithKeyExchangeLogger(logger.With().Str("component", "keyexchange").Logger()),
	}
	if cfg.cache != nil {
		kxOpts = append(kxOpts, WithCache(cfg.cache))
	}
	keys := NewKeyExchangeClient(apiClient, kxOpts...)

	encCfg := cfg.encryptor
	if encCfg.logger == nil {
		encLogger := logger.With().Str("component", "encryptor").Logger()
		encCfg.logger = &encLogger
	}
	encryptor, err := newPasswordEncryptor(keys, encCfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiClient: apiClient,
		keys:      keys,
		encryptor: encryptor,
		logger:    logger,
	}, nil
}

// PublicKey returns the server public key, fetching it on first use.
func (c *Client) PublicKey(ctx context.Context) (PublicKey, error) {
	return c.keys.GetPublicKey(ctx)
}

// ClearCachedPublicKey forgets the server key. Call it after the server
// rotated its key; the next encryption fetches the new one.
func (c *Client) ClearCachedPublicKey() {
	c.keys.ClearCache()
}

// EncryptPassword returns the wire blob for password. The empty string is
// returned unchanged.
func (c *Client) EncryptPassword(ctx context.Context, password string) (string, error) {
	return c.encryptor.Encrypt(ctx, password)
}

// Login signs in with username and password. totpCode may be empty; when
// the account needs one the result reports RequiresTwoFactor. On success
// the session cookie is kept for ChangePassword and DisableTwoFactor unless
// a custom HTTP client without a cookie jar was supplied.
func (c *Client) Login(ctx context.Context, username, password, totpCode string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	blob, err := c.encryptor.Encrypt(ctx, password)
	if err != nil {
		return nil, err
	}

	resp, err := c.apiClient.Login(ctx, api.LoginRequest{
		Username: username,
		Password: blob,
		TOTPCode: totpCode,
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("username", username).Msg("login failed")
		return nil, wrapError(err)
	}

	c.logger.Info().Str("username", username).Str("status", resp.Status).Msg("login")
	return &LoginResult{
		Status:   resp.Status,
		Message:  resp.Message,
		Username: resp.Username,
	}, nil
}

// ChangePassword changes the password of the logged-in user. Both
// passwords are encrypted with separate ephemeral keys.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrMissingCredentials
	}

	oldBlob, err := c.encryptor.Encrypt(ctx, oldPassword)
	if err != nil {
		return err
	}
	newBlob, err := c.encryptor.Encrypt(ctx, newPassword)
	if err != nil {
		return err
	}

	_, err = c.apiClient.ChangePassword(ctx, api.ChangePasswordRequest{
		OldPassword: oldBlob,
		NewPassword: newBlob,
	})
	return wrapError(err)
}

// DisableTwoFactor turns off 2FA for the logged-in user after confirming
// the password.
func (c *Client) DisableTwoFactor(ctx context.Context, password string) error {
	if password == "" {
		return ErrMissingCredentials
	}

	blob, err := c.encryptor.Encrypt(ctx, password)
	if err != nil {
		return err
	}

	_, err = c.apiClient.DisableTwoFactor(ctx, api.DisableTwoFactorRequest{Password: blob})
	return wrapError(err)
}
