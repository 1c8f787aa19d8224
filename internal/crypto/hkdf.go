package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives an AES-256 key from an ECDH shared secret using
// HKDF-SHA-256 with an empty salt and the [HKDFInfo] label.
//
// An empty salt is equivalent to a zero-filled salt of hash length
// (RFC 5869 §2.2), which is what the server side uses.
func DeriveKey(secret []byte) ([]byte, error) {
	return deriveKey(secret, nil, []byte(HKDFInfo), AESKeySize)
}

func deriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty secret", ErrKeyDerivation)
	}

	reader := hkdf.New(sha256.New, secret, salt, info)
	key := make([]byte, length)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}

	return key, nil
}
