package passcrypt

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func applyOptions(opts ...Option) *clientConfig {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt.applyClient(cfg)
	}
	return cfg
}

func TestWithBaseURL(t *testing.T) {
	cfg := applyOptions(WithBaseURL("https://media.example.com"))
	if cfg.baseURL != "https://media.example.com" {
		t.Errorf("baseURL = %s", cfg.baseURL)
	}
}

func TestWithHTTPClient(t *testing.T) {
	customClient := &http.Client{Timeout: 99 * time.Second}
	cfg := applyOptions(WithHTTPClient(customClient))
	if cfg.httpClient != customClient {
		t.Error("httpClient was not set")
	}
}

func TestWithTimeout(t *testing.T) {
	cfg := applyOptions(WithTimeout(7 * time.Second))
	if cfg.timeout != 7*time.Second {
		t.Errorf("timeout = %v", cfg.timeout)
	}
}

func TestWithRetries(t *testing.T) {
	cfg := applyOptions(WithRetries(3), WithRetryOn([]int{502, 503}))
	if cfg.retries != 3 {
		t.Errorf("retries = %d", cfg.retries)
	}
	if len(cfg.retryOn) != 2 || cfg.retryOn[0] != 502 {
		t.Errorf("retryOn = %v", cfg.retryOn)
	}
}

func TestWithPublicKeyCache(t *testing.T) {
	cache := NewPublicKeyCache()
	cfg := applyOptions(WithPublicKeyCache(cache))
	if cfg.cache != cache {
		t.Error("cache was not set")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := applyOptions(WithLogger(zerolog.New(&buf)))
	if cfg.logger == nil {
		t.Fatal("logger was not set")
	}
	cfg.logger.Info().Msg("hello")
	if buf.Len() == 0 {
		t.Error("logger does not write to the given writer")
	}
}

func TestEncryptorOptionsApplyToClient(t *testing.T) {
	r := bytes.NewReader(nil)
	cfg := applyOptions(WithBackend(BackendBundled), WithRandom(r))

	if cfg.encryptor.backend != BackendBundled {
		t.Errorf("backend = %s", cfg.encryptor.backend)
	}
	if cfg.encryptor.random != r {
		t.Error("random was not set")
	}
}

func TestOptions_LastWins(t *testing.T) {
	cfg := applyOptions(
		WithBaseURL("https://a.example.com"),
		WithBaseURL("https://b.example.com"),
		WithBackend(BackendBundled),
		WithBackend(BackendPlatform),
	)
	if cfg.baseURL != "https://b.example.com" {
		t.Errorf("baseURL = %s", cfg.baseURL)
	}
	if cfg.encryptor.backend != BackendPlatform {
		t.Errorf("backend = %s", cfg.encryptor.backend)
	}
}
