package passcrypt

import (
	"context"
	"sync/atomic"
)

// FakeKeyFetcher is a KeyFetcher for tests. It returns PublicKeyHex, or Err
// when set, and counts how often it was called.
type FakeKeyFetcher struct {
	// PublicKeyHex is returned by a successful fetch.
	PublicKeyHex string
	// Err, when non-nil, is returned instead of the key.
	Err error
	// Hook, when set, runs inside every fetch before it returns. A non-nil
	// error from Hook is returned as the fetch result.
	Hook func(ctx context.Context) error

	calls atomic.Int64
}

var _ KeyFetcher = (*FakeKeyFetcher)(nil)

// FetchPublicKey implements KeyFetcher.
func (f *FakeKeyFetcher) FetchPublicKey(ctx context.Context) (string, error) {
	f.calls.Add(1)

	if f.Hook != nil {
		if err := f.Hook(ctx); err != nil {
			return "", err
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.PublicKeyHex, nil
}

// Calls returns the number of FetchPublicKey calls so far.
func (f *FakeKeyFetcher) Calls() int {
	return int(f.calls.Load())
}

// Reset sets the call counter back to zero.
func (f *FakeKeyFetcher) Reset() {
	f.calls.Store(0)
}
