package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passcrypt.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoader("").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Client.Backend != "platform" {
		t.Errorf("Backend = %q", cfg.Client.Backend)
	}
	if cfg.Client.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Client.Timeout)
	}
	if cfg.Client.Retries != 0 {
		t.Errorf("Retries = %d, want 0", cfg.Client.Retries)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
client:
  base_url: https://media.example.com
  backend: bundled
  timeout: 5s
  retries: 2
server:
  addr: ":9000"
  key_dir: /var/lib/passcrypt
  users:
    - username: alice
      password_hash: "`+testHash+`"
    - username: bob
      password_hash: "`+testHash+`"
      totp_secret: GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ
log:
  level: debug
  format: json
`)

	loader := NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loader.ConfigFile() != path {
		t.Errorf("ConfigFile() = %q", loader.ConfigFile())
	}

	if cfg.Client.BaseURL != "https://media.example.com" || cfg.Client.Backend != "bundled" {
		t.Errorf("Client = %+v", cfg.Client)
	}
	if cfg.Client.Timeout != 5*time.Second || cfg.Client.Retries != 2 {
		t.Errorf("Client = %+v", cfg.Client)
	}
	if len(cfg.Server.Users) != 2 || cfg.Server.Users[1].TOTPSecret == "" {
		t.Errorf("Users = %+v", cfg.Server.Users)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PASSCRYPT_CLIENT_BASE_URL", "http://localhost:8080")
	t.Setenv("PASSCRYPT_CLIENT_TIMEOUT", "2s")
	t.Setenv("PASSCRYPT_LOG_LEVEL", "warn")

	cfg, err := NewLoader("").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Client.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.Client.BaseURL)
	}
	if cfg.Client.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v", cfg.Client.Timeout)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "client:\n  backend: bundled\n")
	t.Setenv("PASSCRYPT_CLIENT_BACKEND", "platform")

	cfg, err := NewLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Client.Backend != "platform" {
		t.Errorf("Backend = %q, want env value", cfg.Client.Backend)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad backend", "client:\n  backend: openssl\n", "Backend"},
		{"bad url", "client:\n  base_url: not a url\n", "BaseURL"},
		{"negative retries", "client:\n  retries: -1\n", "Retries"},
		{"bad level", "log:\n  level: loud\n", "Level"},
		{"bad format", "log:\n  format: xml\n", "Format"},
		{"bad addr", "server:\n  addr: nowhere\n", "Addr"},
		{"user without hash", "server:\n  users:\n    - username: alice\n", "PasswordHash"},
		{"plain password", "server:\n  users:\n    - username: alice\n      password_hash: hunter2\n", "PasswordHash"},
		{
			"duplicate user",
			"server:\n  users:\n    - username: alice\n      password_hash: \"" + testHash + "\"\n" +
				"    - username: alice\n      password_hash: \"" + testHash + "\"\n",
			"Users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(writeConfig(t, tt.body)).Load()
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should mention %s", err, tt.field)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	if err == nil {
		t.Error("an explicitly named config file must exist")
	}
}
