package crypto

import (
	"fmt"
	"io"
)

// Backend is the set of primitives the wire format is built from.
// Implementations must be byte-compatible: the same random input yields the
// same key pair, the same shared secret and the same ciphertext.
type Backend interface {
	// Name identifies the backend in logs and configuration.
	Name() string
	// GenerateKeyPair creates a fresh ephemeral P-256 key pair from r.
	GenerateKeyPair(r io.Reader) (*KeyPair, error)
	// Agree returns the X coordinate of the ECDH point between kp and peer.
	Agree(kp *KeyPair, peer []byte) ([]byte, error)
	// DeriveKey turns a shared secret into an AES-256 key.
	DeriveKey(secret []byte) ([]byte, error)
	// Seal encrypts plaintext with AES-256-GCM under the fixed nonce and
	// no associated data.
	Seal(key, plaintext []byte) ([]byte, error)
}

// BackendByName returns the backend registered under name.
func BackendByName(name string) (Backend, error) {
	switch name {
	case "", PlatformName:
		return Platform(), nil
	case BundledName:
		return Bundled(), nil
	default:
		return nil, fmt.Errorf("unknown crypto backend %q", name)
	}
}

// symmetric holds the primitives that do not depend on the curve
// implementation.
type symmetric struct{}

func (symmetric) DeriveKey(secret []byte) ([]byte, error) {
	return DeriveKey(secret)
}

func (symmetric) Seal(key, plaintext []byte) ([]byte, error) {
	ct, err := SealAESGCM(key, zeroNonce[:], plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSeal, err)
	}
	return ct, nil
}
