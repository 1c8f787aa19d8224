package crypto

import "errors"

var (
	// ErrInvalidPublicKey is returned when bytes do not encode a usable
	// P-256 point: wrong length, wrong tag, not on the curve, or the identity.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrRandomSource is returned when the random reader fails.
	ErrRandomSource = errors.New("random source unavailable")

	// ErrKeyGeneration is returned when an ephemeral key pair cannot be
	// built from a valid scalar.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrKeyAgreement is returned when ECDH fails for a valid point.
	ErrKeyAgreement = errors.New("key agreement failed")

	// ErrKeyDerivation is returned when HKDF cannot produce a key.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrSeal is returned when AES-GCM cannot be initialised or sealed.
	ErrSeal = errors.New("seal failed")

	// ErrDecryptionFailed is returned when decryption fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeySize is returned when the AES key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when the nonce size is invalid.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidBlob is returned when a wire blob is malformed.
	ErrInvalidBlob = errors.New("invalid blob")
)
