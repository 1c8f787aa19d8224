package passcrypt

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/prettyserver/passcrypt/internal/crypto"
)

// Backend selects the implementation of the elliptic-curve primitives.
// Both produce byte-identical output.
type Backend string

const (
	// BackendPlatform uses the Go standard library (crypto/ecdh).
	BackendPlatform Backend = crypto.PlatformName
	// BackendBundled uses cloudflare/circl group arithmetic.
	BackendBundled Backend = crypto.BundledName
)

// encryptorConfig holds configuration for a PasswordEncryptor.
type encryptorConfig struct {
	backend Backend
	random  io.Reader
	logger  *zerolog.Logger
}

// EncryptorOption configures a PasswordEncryptor. Every EncryptorOption is
// also accepted by New.
type EncryptorOption func(*encryptorConfig)

func (o EncryptorOption) applyClient(c *clientConfig) {
	o(&c.encryptor)
}

// WithBackend selects the crypto backend. The default is BackendPlatform.
func WithBackend(b Backend) EncryptorOption {
	return func(c *encryptorConfig) {
		c.backend = b
	}
}

// WithRandom sets the source of ephemeral key material. The default is
// crypto/rand.Reader. Tests use it to pin known-answer vectors.
func WithRandom(r io.Reader) EncryptorOption {
	return func(c *encryptorConfig) {
		c.random = r
	}
}

// WithEncryptorLogger sets the logger of the encryptor.
func WithEncryptorLogger(logger zerolog.Logger) EncryptorOption {
	return func(c *encryptorConfig) {
		c.logger = &logger
	}
}

// PasswordEncryptor turns a plaintext password into a wire blob for the
// server key provided by its PublicKeySource. It is safe for concurrent use
// as long as its random reader is.
type PasswordEncryptor struct {
	keys    PublicKeySource
	backend crypto.Backend
	random  io.Reader
	logger  zerolog.Logger
}

// NewPasswordEncryptor returns a PasswordEncryptor that encrypts to the key
// returned by keys.
func NewPasswordEncryptor(keys PublicKeySource, opts ...EncryptorOption) (*PasswordEncryptor, error) {
	var cfg encryptorConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return newPasswordEncryptor(keys, cfg)
}

func newPasswordEncryptor(keys PublicKeySource, cfg encryptorConfig) (*PasswordEncryptor, error) {
	if keys == nil {
		return nil, errors.New("public key source is required")
	}

	backend, err := crypto.BackendByName(string(cfg.backend))
	if err != nil {
		return nil, err
	}

	random := cfg.random
	if random == nil {
		random = rand.Reader
	}

	logger := zerolog.Nop()
	if cfg.logger != nil {
		logger = *cfg.logger
	}

	return &PasswordEncryptor{
		keys:    keys,
		backend: backend,
		random:  random,
		logger:  logger.With().Str("backend", backend.Name()).Logger(),
	}, nil
}

// Backend returns the name of the backend in use.
func (e *PasswordEncryptor) Backend() Backend {
	return Backend(e.backend.Name())
}

// Encrypt returns the base64 wire blob for plaintext:
// ephemeral public key (65 bytes) || AES-256-GCM ciphertext || tag.
//
// The empty string is returned unchanged without looking up the key.
// Every call uses a fresh ephemeral key, so encrypting the same password
// twice gives different blobs.
func (e *PasswordEncryptor) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	key, err := e.keys.GetPublicKey(ctx)
	if err != nil {
		var kfErr *KeyFetchError
		if errors.As(err, &kfErr) {
			return "", err
		}
		return "", &KeyFetchError{Err: err}
	}

	pt := []byte(plaintext)
	defer crypto.Wipe(pt)

	blob, err := crypto.Seal(e.backend, e.random, key.b, pt)
	if err != nil {
		err = classifySealError(err)
		e.logger.Warn().Err(err).Str("key", key.Fingerprint()).Msg("password encryption failed")
		return "", err
	}

	e.logger.Debug().Str("key", key.Fingerprint()).Int("blob_len", len(blob)).Msg("password encrypted")
	return crypto.EncodeBlob(blob), nil
}

// classifySealError maps internal crypto errors to public error types.
func classifySealError(err error) error {
	switch {
	case errors.Is(err, crypto.ErrInvalidPublicKey):
		return &InvalidPublicKeyError{Reason: "rejected by backend", Err: err}
	case errors.Is(err, crypto.ErrRandomSource):
		return &RandomnessError{Err: err}
	case errors.Is(err, crypto.ErrKeyGeneration):
		return &EncryptionError{Stage: StageKeyGeneration, Err: err}
	case errors.Is(err, crypto.ErrKeyAgreement):
		return &EncryptionError{Stage: StageKeyAgreement, Err: err}
	case errors.Is(err, crypto.ErrKeyDerivation):
		return &EncryptionError{Stage: StageKeyDerivation, Err: err}
	case errors.Is(err, crypto.ErrSeal):
		return &EncryptionError{Stage: StageSeal, Err: err}
	default:
		return &EncryptionError{Stage: StageSeal, Err: fmt.Errorf("unexpected: %w", err)}
	}
}
