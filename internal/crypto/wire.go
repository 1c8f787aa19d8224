package crypto

import (
	"crypto/ecdh"
	"fmt"
	"io"
)

// Seal runs the full client pipeline and returns the raw wire blob:
// ephemeral public point (65 bytes) || AES-GCM ciphertext || tag.
//
// The steps are:
//  1. validate serverPub (no agreement is attempted on a bad point)
//  2. generate a fresh ephemeral key pair from r
//  3. ECDH with serverPub, keep the X coordinate
//  4. HKDF-SHA-256, empty salt, info [HKDFInfo]
//  5. AES-256-GCM with the all-zero nonce and no AAD
//
// Every intermediate secret is wiped before Seal returns.
func Seal(b Backend, r io.Reader, serverPub, plaintext []byte) ([]byte, error) {
	if _, err := ParsePublicKey(serverPub); err != nil {
		return nil, err
	}

	kp, err := b.GenerateKeyPair(r)
	if err != nil {
		return nil, err
	}
	defer kp.Destroy()

	secret, err := b.Agree(kp, serverPub)
	if err != nil {
		return nil, err
	}
	defer Wipe(secret)

	key, err := b.DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	defer Wipe(key)

	ct, err := b.Seal(key, plaintext)
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, len(kp.Public)+len(ct))
	blob = append(blob, kp.Public...)
	blob = append(blob, ct...)
	return blob, nil
}

// Open is the server-side inverse of [Seal]. It splits the blob at the
// ephemeral point, repeats the agreement with priv and authenticates the
// ciphertext. Any modification of the blob yields [ErrDecryptionFailed].
func Open(priv *ecdh.PrivateKey, blob []byte) ([]byte, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: nil private key", ErrDecryptionFailed)
	}
	if len(blob) < MinBlobSize {
		return nil, fmt.Errorf("%w: got %d bytes, want at least %d", ErrInvalidBlob, len(blob), MinBlobSize)
	}

	ephPub, err := ecdh.P256().NewPublicKey(blob[:P256PublicKeySize])
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", ErrDecryptionFailed, ErrInvalidPublicKey)
	}

	secret, err := priv.ECDH(ephPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	defer Wipe(secret)

	key, err := DeriveKey(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	defer Wipe(key)

	return OpenAESGCM(key, zeroNonce[:], blob[P256PublicKeySize:], nil)
}

// EncodeBlob returns the transport form of a wire blob.
func EncodeBlob(blob []byte) string {
	return ToBase64(blob)
}

// DecodeBlob parses the transport form of a wire blob. Only the framing is
// checked.
func DecodeBlob(encoded string) ([]byte, error) {
	blob, err := FromBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}
	if len(blob) < MinBlobSize {
		return nil, fmt.Errorf("%w: got %d bytes, want at least %d", ErrInvalidBlob, len(blob), MinBlobSize)
	}
	return blob, nil
}

// OpenString decodes a base64 wire blob and opens it.
func OpenString(priv *ecdh.PrivateKey, encoded string) (string, error) {
	blob, err := DecodeBlob(encoded)
	if err != nil {
		return "", err
	}

	plaintext, err := Open(priv, blob)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether s looks like a wire blob: valid base64 that
// decodes to at least an ephemeral point and a tag. It does not
// authenticate anything.
func IsEncrypted(s string) bool {
	if s == "" {
		return false
	}
	blob, err := DecodeBlob(s)
	if err != nil {
		return false
	}
	return blob[0] == uncompressedPointTag
}

// EncodedLen returns the length of the base64 wire blob for a plaintext of
// n bytes.
func EncodedLen(n int) int {
	return 4 * ((P256PublicKeySize + n + AESTagSize + 2) / 3)
}
