package crypto

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cloudflare/circl/group"
)

// BundledName is the name of the circl backend.
const BundledName = "bundled"

type bundledBackend struct {
	symmetric
}

// Bundled returns the backend built on circl's prime-order group
// arithmetic for P-256. It does not go through crypto/ecdh, which makes it
// usable where the platform implementation is unavailable or distrusted.
func Bundled() Backend {
	return bundledBackend{}
}

func (bundledBackend) Name() string { return BundledName }

func (bundledBackend) scalar(b []byte) group.Scalar {
	return group.P256.NewScalar().SetBigInt(new(big.Int).SetBytes(b))
}

func (g bundledBackend) GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	scalar, err := generateScalar(r)
	if err != nil {
		return nil, err
	}

	pub := group.P256.NewElement().MulGen(g.scalar(scalar))
	pubBytes, err := pub.MarshalBinary()
	if err != nil || len(pubBytes) != P256PublicKeySize {
		Wipe(scalar)
		return nil, fmt.Errorf("%w: cannot encode public point", ErrKeyGeneration)
	}

	return &KeyPair{
		scalar: scalar,
		Public: pubBytes,
	}, nil
}

func (g bundledBackend) Agree(kp *KeyPair, peer []byte) ([]byte, error) {
	if len(peer) != P256PublicKeySize || peer[0] != uncompressedPointTag {
		return nil, fmt.Errorf("%w: not an uncompressed P-256 point", ErrInvalidPublicKey)
	}

	pt := group.P256.NewElement()
	if err := pt.UnmarshalBinary(peer); err != nil {
		return nil, fmt.Errorf("%w: point is not on P-256", ErrInvalidPublicKey)
	}
	if pt.IsIdentity() {
		return nil, fmt.Errorf("%w: point at infinity", ErrInvalidPublicKey)
	}

	shared := group.P256.NewElement().Mul(pt, g.scalar(kp.scalar))
	if shared.IsIdentity() {
		return nil, fmt.Errorf("%w: shared point at infinity", ErrKeyAgreement)
	}

	enc, err := shared.MarshalBinary()
	if err != nil || len(enc) != P256PublicKeySize {
		return nil, fmt.Errorf("%w: cannot encode shared point", ErrKeyAgreement)
	}
	defer Wipe(enc)

	secret := make([]byte, SharedSecretSize)
	copy(secret, enc[1:1+SharedSecretSize])
	return secret, nil
}
