package crypto

const (
	// HKDFInfo is the info label used in HKDF key derivation.
	// The server derives with the same label, so it must never change.
	HKDFInfo = "password-encryption"

	// Algorithm is the label the key endpoint publishes next to the key.
	Algorithm = "ECC-secp256r1"

	// P256PublicKeySize is the size of an uncompressed P-256 point:
	// 0x04 || X (32 bytes) || Y (32 bytes).
	P256PublicKeySize = 65
	// P256ScalarSize is the size of a P-256 private scalar in bytes.
	P256ScalarSize = 32
	// SharedSecretSize is the size of the ECDH shared secret (the X coordinate).
	SharedSecretSize = 32

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESNonceSize is the size of an AES-GCM nonce in bytes.
	AESNonceSize = 12
	// AESTagSize is the size of an AES-GCM authentication tag in bytes.
	AESTagSize = 16

	// MinBlobSize is the size of a sealed empty plaintext.
	MinBlobSize = P256PublicKeySize + AESTagSize

	uncompressedPointTag = 0x04
)

// Ciphersuite is the canonical string representation of the algorithm suite.
var Ciphersuite = "ECDH-P256:HKDF-SHA-256:AES-256-GCM"
