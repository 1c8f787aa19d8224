package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// ToBase64 encodes bytes to standard base64 with padding.
// This is the encoding of every wire blob.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes standard base64 (with padding) to bytes.
func FromBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// FromHex decodes a hex-encoded public key. The length is not checked here;
// use [ParsePublicKey] on the result.
func FromHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return b, nil
}

// ToHex encodes bytes as lowercase hex.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}
