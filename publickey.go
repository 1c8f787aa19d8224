package passcrypt

import (
	"bytes"

	"github.com/prettyserver/passcrypt/internal/crypto"
)

// PublicKeySize is the length of an uncompressed P-256 point.
const PublicKeySize = crypto.P256PublicKeySize

// PublicKey is a validated server public key: an uncompressed P-256 point
// (0x04 || X || Y). The zero value is not a valid key.
type PublicKey struct {
	b []byte
}

// ParsePublicKey validates b and returns it as a PublicKey.
func ParsePublicKey(b []byte) (PublicKey, error) {
	pub, err := crypto.ParsePublicKey(b)
	if err != nil {
		return PublicKey{}, &InvalidPublicKeyError{Reason: invalidKeyReason(b), Err: err}
	}
	return PublicKey{b: pub}, nil
}

// ParsePublicKeyHex decodes the 130-character hex form served by the key
// endpoint and validates it. A hex decoding failure is returned as is; a
// decoded value that is not a point yields *InvalidPublicKeyError.
func ParsePublicKeyHex(s string) (PublicKey, error) {
	b, err := crypto.FromHex(s)
	if err != nil {
		return PublicKey{}, err
	}
	return ParsePublicKey(b)
}

// Bytes returns a copy of the encoded point.
func (k PublicKey) Bytes() []byte {
	return bytes.Clone(k.b)
}

// Hex returns the lowercase hex encoding of the point.
func (k PublicKey) Hex() string {
	return crypto.ToHex(k.b)
}

// Fingerprint returns a short identifier that is safe to log.
func (k PublicKey) Fingerprint() string {
	if k.IsZero() {
		return ""
	}
	return crypto.Fingerprint(k.b)
}

// IsZero reports whether k is the zero PublicKey.
func (k PublicKey) IsZero() bool {
	return len(k.b) == 0
}

// Equal reports whether k and other encode the same point.
func (k PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(k.b, other.b)
}

func (k PublicKey) String() string {
	return "P-256 " + k.Fingerprint()
}

func invalidKeyReason(b []byte) string {
	switch {
	case len(b) != PublicKeySize:
		return "wrong length"
	case b[0] != 0x04:
		return "not an uncompressed point"
	default:
		return "point is not on P-256"
	}
}
