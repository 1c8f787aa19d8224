// Package passcrypt encrypts passwords on the client before they are sent
// to a server that publishes a static P-256 public key.
//
// Each password is sealed to the server key with a fresh ephemeral key:
// P-256 ECDH, HKDF-SHA-256 (empty salt, info "password-encryption") and
// AES-256-GCM with an all-zero nonce. The result travels as standard
// base64 of ephemeral public key (65 bytes) || ciphertext || tag (16 bytes).
// The constant nonce is safe only because no derived key is ever used
// twice.
//
// This protects the password on channels that may be read by an
// intermediary. It does not authenticate the server: the key is trusted on
// first fetch.
//
// Basic usage:
//
//	client, err := passcrypt.New(passcrypt.WithBaseURL("https://media.example.com"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.Login(ctx, "alice", "hunter2", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.RequiresTwoFactor() {
//	    result, err = client.Login(ctx, "alice", "hunter2", code)
//	}
//
// The two roles can also be used on their own:
//
//	keys := passcrypt.NewKeyExchangeClient(fetcher)
//	enc, err := passcrypt.NewPasswordEncryptor(keys, passcrypt.WithBackend(passcrypt.BackendBundled))
//	blob, err := enc.Encrypt(ctx, "hunter2")
//
// # Errors
//
// All errors implement [PasscryptError]. Use errors.Is with [ErrKeyFetch],
// [ErrInvalidPublicKey], [ErrRandomness] and [ErrEncryption] for the
// encryption path, and [ErrBadRequest], [ErrUnauthorized] and
// [ErrRateLimited] for server responses. Nothing is sent when encryption
// fails.
package passcrypt
