// Package keystore holds the server's static P-256 key pair and opens
// password blobs sealed to it.
package keystore

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/prettyserver/passcrypt/internal/crypto"
)

// Default file names inside the key directory.
const (
	DefaultPrivateKeyFile = ".private_key.pem"
	DefaultPublicKeyFile  = ".public_key.pem"
)

var (
	// ErrKeyNotFound is returned by Load when a key file is missing.
	ErrKeyNotFound = errors.New("key file not found")
	// ErrInvalidPEM is returned when a key file holds no usable PEM block.
	ErrInvalidPEM = errors.New("invalid PEM block")
	// ErrKeyMismatch is returned when the public key file does not belong
	// to the private key.
	ErrKeyMismatch = errors.New("public key does not match private key")
)

type options struct {
	privateFile string
	publicFile  string
	random      io.Reader
	logger      zerolog.Logger
}

// Option configures a Store.
type Option func(*options)

// WithFileNames overrides the key file names.
func WithFileNames(privateFile, publicFile string) Option {
	return func(o *options) {
		o.privateFile = privateFile
		o.publicFile = publicFile
	}
}

// WithRandom sets the random source for key generation.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		o.random = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		privateFile: DefaultPrivateKeyFile,
		publicFile:  DefaultPublicKeyFile,
		random:      rand.Reader,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store is a server key pair persisted as PEM files: the private key as
// PKCS#8 and the public key as PKIX. It is safe for concurrent use.
type Store struct {
	priv        *ecdh.PrivateKey
	privatePath string
	publicPath  string
	backend     crypto.Backend
	random      io.Reader
}

// LoadOrCreate loads the key pair from dir. When either file is missing or
// cannot be parsed, or the two do not match, a new pair is generated and
// written over them.
func LoadOrCreate(dir string, opts ...Option) (*Store, error) {
	o := newOptions(opts)
	log := o.logger.With().Str("dir", dir).Logger()

	s, err := load(dir, o)
	if err == nil {
		log.Info().Str("key", s.Fingerprint()).Msg("loaded server key pair")
		return s, nil
	}

	if errors.Is(err, ErrKeyNotFound) {
		log.Info().Msg("no server key pair found, generating")
	} else {
		log.Warn().Err(err).Msg("server key pair unreadable, regenerating")
	}

	s, err = generate(dir, o)
	if err != nil {
		return nil, err
	}
	log.Info().Str("key", s.Fingerprint()).Msg("generated server key pair")
	return s, nil
}

// Load reads an existing key pair from dir.
func Load(dir string, opts ...Option) (*Store, error) {
	return load(dir, newOptions(opts))
}

// Generate creates a new key pair in dir, replacing any existing files.
func Generate(dir string, opts ...Option) (*Store, error) {
	return generate(dir, newOptions(opts))
}

func load(dir string, o *options) (*Store, error) {
	privPath := filepath.Join(dir, o.privateFile)
	pubPath := filepath.Join(dir, o.publicFile)

	priv, err := readPrivateKey(privPath)
	if err != nil {
		return nil, err
	}
	pub, err := readPublicKey(pubPath)
	if err != nil {
		return nil, err
	}
	if !pub.Equal(priv.PublicKey()) {
		return nil, ErrKeyMismatch
	}

	return newStore(priv, privPath, pubPath, o), nil
}

func generate(dir string, o *options) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}

	priv, err := ecdh.P256().GenerateKey(o.random)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	privPath := filepath.Join(dir, o.privateFile)
	pubPath := filepath.Join(dir, o.publicFile)

	if err := writePrivateKey(privPath, priv); err != nil {
		return nil, err
	}
	if err := writePublicKey(pubPath, priv.PublicKey()); err != nil {
		return nil, err
	}

	return newStore(priv, privPath, pubPath, o), nil
}

func newStore(priv *ecdh.PrivateKey, privPath, pubPath string, o *options) *Store {
	return &Store{
		priv:        priv,
		privatePath: privPath,
		publicPath:  pubPath,
		backend:     crypto.Platform(),
		random:      o.random,
	}
}

// PrivateKey returns the private key.
func (s *Store) PrivateKey() *ecdh.PrivateKey {
	return s.priv
}

// PublicKey returns the uncompressed public point.
func (s *Store) PublicKey() []byte {
	return s.priv.PublicKey().Bytes()
}

// PublicKeyHex returns the public point as served by the key endpoint.
func (s *Store) PublicKeyHex() string {
	return crypto.ToHex(s.PublicKey())
}

// PublicKeyPEM returns the public key as a PKIX PEM block.
func (s *Store) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(s.priv.PublicKey())
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// Fingerprint returns a short identifier of the public key.
func (s *Store) Fingerprint() string {
	return crypto.Fingerprint(s.PublicKey())
}

// Paths returns the private and public key file paths.
func (s *Store) Paths() (privatePath, publicPath string) {
	return s.privatePath, s.publicPath
}

// Decrypt opens a base64 wire blob. It never falls back to treating the
// input as plaintext: anything that does not authenticate is an error.
func (s *Store) Decrypt(blob string) (string, error) {
	if blob == "" {
		return "", nil
	}
	return crypto.OpenString(s.priv, blob)
}

// Encrypt seals plaintext to this store's own public key, as a client
// would. The empty string is returned unchanged.
func (s *Store) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	pt := []byte(plaintext)
	defer crypto.Wipe(pt)

	blob, err := crypto.Seal(s.backend, s.random, s.PublicKey(), pt)
	if err != nil {
		return "", err
	}
	return crypto.EncodeBlob(blob), nil
}

func readPrivateKey(path string) (*ecdh.PrivateKey, error) {
	block, err := readPEM(path, "PRIVATE KEY")
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key %s: %w", path, err)
	}

	ecKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: not an EC private key (%T)", path, key)
	}

	priv, err := ecKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if priv.Curve() != ecdh.P256() {
		return nil, fmt.Errorf("%s: key is not on P-256", path)
	}
	return priv, nil
}

func readPublicKey(path string) (*ecdh.PublicKey, error) {
	block, err := readPEM(path, "PUBLIC KEY")
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key %s: %w", path, err)
	}

	ecKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%s: not an EC public key (%T)", path, key)
	}

	pub, err := ecKey.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pub, nil
}

func readPEM(path, blockType string) (*pem.Block, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != blockType {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPEM, path)
	}
	return block, nil
}

func writePrivateKey(path string, priv *ecdh.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}
	return writePEM(path, &pem.Block{Type: "PRIVATE KEY", Bytes: der}, 0o600)
}

func writePublicKey(path string, pub *ecdh.PublicKey) error {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	return writePEM(path, &pem.Block{Type: "PUBLIC KEY", Bytes: der}, 0o644)
}

// writePEM writes to a temporary file and renames it into place so that a
// crash never leaves a truncated key behind.
func writePEM(path string, block *pem.Block, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := pem.Encode(tmp, block); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
