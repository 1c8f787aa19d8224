package crypto

import (
	"crypto/ecdh"
	"crypto/elliptic"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
)

// maxScalarAttempts bounds rejection sampling. A 32-byte draw is out of
// range with probability about 2^-32, so hitting the bound means the
// reader is broken.
const maxScalarAttempts = 8

var p256Order = elliptic.P256().Params().N

// KeyPair is a single-use P-256 key pair. It is created for one seal and
// destroyed right after.
type KeyPair struct {
	scalar []byte
	// Public is the uncompressed public point.
	Public []byte
}

// Destroy wipes the private scalar.
func (k *KeyPair) Destroy() {
	if k == nil {
		return
	}
	Wipe(k.scalar)
}

// ParsePublicKey checks that b is an uncompressed P-256 point on the curve
// and returns a copy of it.
func ParsePublicKey(b []byte) ([]byte, error) {
	if len(b) != P256PublicKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPublicKey, len(b), P256PublicKeySize)
	}
	if b[0] != uncompressedPointTag {
		return nil, fmt.Errorf("%w: point is not uncompressed (tag 0x%02x)", ErrInvalidPublicKey, b[0])
	}
	if _, err := ecdh.P256().NewPublicKey(b); err != nil {
		return nil, fmt.Errorf("%w: point is not on P-256", ErrInvalidPublicKey)
	}

	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Fingerprint returns a short identifier for a public key that is safe to log.
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return ToHex(sum[:8])
}

// generateScalar draws a private scalar in [1, n-1] from r by rejection
// sampling. Both backends use it, so the same random bytes always give
// the same key pair regardless of backend.
func generateScalar(r io.Reader) ([]byte, error) {
	scalar := make([]byte, P256ScalarSize)
	k := new(big.Int)

	for range maxScalarAttempts {
		if _, err := io.ReadFull(r, scalar); err != nil {
			Wipe(scalar)
			return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
		}
		k.SetBytes(scalar)
		if k.Sign() > 0 && k.Cmp(p256Order) < 0 {
			k.SetInt64(0)
			return scalar, nil
		}
	}

	Wipe(scalar)
	return nil, fmt.Errorf("%w: no valid scalar after %d draws", ErrRandomSource, maxScalarAttempts)
}
