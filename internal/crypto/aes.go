package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// zeroNonce is the fixed AES-GCM nonce. It is only safe because every seal
// uses a key derived from a fresh ephemeral ECDH exchange. A derived key
// must never be used for a second seal.
var zeroNonce [AESNonceSize]byte

func newGCM(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}

	if len(nonce) != AESNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), AESNonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return gcm, nil
}

// SealAESGCM encrypts data using AES-256-GCM.
// Returns: ciphertext || tag (16 bytes). The nonce is not prepended.
func SealAESGCM(key, nonce, plaintext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}

	return gcm.Seal(nil, nonce, plaintext, aad), nil
}

// OpenAESGCM decrypts ciphertext || tag produced by [SealAESGCM].
func OpenAESGCM(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < AESTagSize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}
