package crypto

import (
	"crypto/ecdh"
	"fmt"
	"io"
)

// PlatformName is the name of the crypto/ecdh backend.
const PlatformName = "platform"

type platformBackend struct {
	symmetric
}

// Platform returns the backend built on the Go standard library's
// crypto/ecdh P-256 implementation.
func Platform() Backend {
	return platformBackend{}
}

func (platformBackend) Name() string { return PlatformName }

func (platformBackend) GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	scalar, err := generateScalar(r)
	if err != nil {
		return nil, err
	}

	priv, err := ecdh.P256().NewPrivateKey(scalar)
	if err != nil {
		Wipe(scalar)
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	return &KeyPair{
		scalar: scalar,
		Public: priv.PublicKey().Bytes(),
	}, nil
}

func (platformBackend) Agree(kp *KeyPair, peer []byte) ([]byte, error) {
	pub, err := ecdh.P256().NewPublicKey(peer)
	if err != nil {
		return nil, fmt.Errorf("%w: point is not on P-256", ErrInvalidPublicKey)
	}

	priv, err := ecdh.P256().NewPrivateKey(kp.scalar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyAgreement, err)
	}

	secret, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyAgreement, err)
	}

	return secret, nil
}
