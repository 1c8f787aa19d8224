package passcrypt

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/prettyserver/passcrypt/internal/crypto"
)

// KeyFetcher retrieves the hex-encoded server public key. The internal HTTP
// client and FakeKeyFetcher implement it.
type KeyFetcher interface {
	FetchPublicKey(ctx context.Context) (string, error)
}

// PublicKeySource provides the server public key to a PasswordEncryptor.
type PublicKeySource interface {
	GetPublicKey(ctx context.Context) (PublicKey, error)
}

// KeyExchangeOption configures a KeyExchangeClient.
type KeyExchangeOption func(*KeyExchangeClient)

// WithCache makes the client use cache instead of a private one. Clients
// that share a cache share its key and its Clear.
func WithCache(cache *PublicKeyCache) KeyExchangeOption {
	return func(k *KeyExchangeClient) {
		if cache != nil {
			k.cache = cache
		}
	}
}

// WithKeyExchangeLogger sets the logger.
func WithKeyExchangeLogger(logger zerolog.Logger) KeyExchangeOption {
	return func(k *KeyExchangeClient) {
		k.logger = logger
	}
}

const fetchGroupKey = "public-key"

// KeyExchangeClient fetches the server public key once and serves it from
// its cache afterwards. It is safe for concurrent use; concurrent misses
// result in a single fetch.
type KeyExchangeClient struct {
	fetcher KeyFetcher
	cache   *PublicKeyCache
	group   singleflight.Group
	logger  zerolog.Logger
}

var _ PublicKeySource = (*KeyExchangeClient)(nil)

// NewKeyExchangeClient returns a KeyExchangeClient backed by fetcher.
func NewKeyExchangeClient(fetcher KeyFetcher, opts ...KeyExchangeOption) *KeyExchangeClient {
	k := &KeyExchangeClient{
		fetcher: fetcher,
		cache:   NewPublicKeyCache(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// GetPublicKey returns the cached server key, fetching it on a miss.
//
// Errors are *KeyFetchError. When the server returns bytes that are not a
// P-256 point the KeyFetchError wraps an *InvalidPublicKeyError. Failures
// are not cached.
func (k *KeyExchangeClient) GetPublicKey(ctx context.Context) (PublicKey, error) {
	if key, _, ok := k.cache.Load(); ok {
		k.logger.Debug().Str("key", key.Fingerprint()).Msg("public key cache hit")
		return key, nil
	}

	key, err := k.join(ctx)
	if err != nil && ctx.Err() == nil && isContextError(err) {
		// The shared fetch was started by a caller that has since gone away.
		key, err = k.join(ctx)
	}
	return key, err
}

// ClearCache drops the cached key. A fetch already in flight will not
// repopulate the cache.
func (k *KeyExchangeClient) ClearCache() {
	k.cache.Clear()
	k.logger.Debug().Msg("public key cache cleared")
}

// Cache returns the cache used by k.
func (k *KeyExchangeClient) Cache() *PublicKeyCache {
	return k.cache
}

func (k *KeyExchangeClient) join(ctx context.Context) (PublicKey, error) {
	ch := k.group.DoChan(fetchGroupKey, func() (any, error) {
		return k.fetch(ctx)
	})

	select {
	case <-ctx.Done():
		return PublicKey{}, &KeyFetchError{Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return PublicKey{}, res.Err
		}
		return res.Val.(PublicKey), nil
	}
}

func (k *KeyExchangeClient) fetch(ctx context.Context) (PublicKey, error) {
	key, gen, ok := k.cache.Load()
	if ok {
		return key, nil
	}

	k.logger.Debug().Msg("fetching server public key")

	hexKey, err := k.fetcher.FetchPublicKey(ctx)
	if err != nil {
		k.logger.Warn().Err(err).Msg("public key fetch failed")
		return PublicKey{}, &KeyFetchError{Err: wrapError(err)}
	}

	raw, err := crypto.FromHex(hexKey)
	if err != nil {
		k.logger.Warn().Err(err).Msg("server public key is not hex")
		return PublicKey{}, &KeyFetchError{Err: err}
	}

	key, err = ParsePublicKey(raw)
	if err != nil {
		k.logger.Warn().Err(err).Msg("server public key rejected")
		return PublicKey{}, &KeyFetchError{Err: err}
	}

	if err := ctx.Err(); err != nil {
		return PublicKey{}, &KeyFetchError{Err: err}
	}

	if k.cache.Store(key, gen) {
		k.logger.Info().Str("key", key.Fingerprint()).Msg("server public key cached")
	} else {
		k.logger.Debug().Str("key", key.Fingerprint()).Msg("cache cleared during fetch, key not cached")
	}
	return key, nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
