// Package crypto provides the cryptographic primitives of the password
// transport protocol.
//
// # Algorithm Suite
//
//   - ECDH over P-256 (secp256r1) with a fresh ephemeral key per message.
//     The shared secret is the 32-byte X coordinate.
//
//   - HKDF-SHA-256 (RFC 5869) with an empty salt and the info label
//     "password-encryption", producing a 32-byte key.
//
//   - AES-256-GCM with a 12-byte all-zero nonce and no associated data.
//
// # Wire Format
//
//	base64( ephemeral_pub (65, uncompressed) || ciphertext || tag (16) )
//
// # Nonce Safety
//
// The nonce is constant. This is safe only because each derived key is
// used for exactly one seal: every call to [Seal] generates a new ephemeral
// key pair, so the (key, nonce) pair never repeats. Caching or reusing a
// derived key across messages would break AES-GCM completely.
//
// # Backends
//
// [Backend] abstracts the four primitives so the curve arithmetic can come
// from the standard library ([Platform]) or from circl ([Bundled]).
// Both produce identical bytes for identical random input.
//
// [Open] is the server-side inverse and is used by the key store and tests.
package crypto
