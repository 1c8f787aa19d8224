package keyserver

import (
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func mustHash(t testing.TB, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(hash)
}

func TestUsers_Authenticate(t *testing.T) {
	users := NewUsers(User{Username: "alice", PasswordHash: mustHash(t, "hunter2")})

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"correct", "alice", "hunter2", true},
		{"wrong password", "alice", "hunter3", false},
		{"unknown user", "mallory", "hunter2", false},
		{"empty password", "alice", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, ok := users.Authenticate(tt.username, tt.password)
			if ok != tt.want {
				t.Errorf("Authenticate() ok = %v, want %v", ok, tt.want)
			}
			if ok && user.Username != tt.username {
				t.Errorf("Authenticate() user = %q", user.Username)
			}
		})
	}
}

func TestUsers_SetPassword(t *testing.T) {
	users := NewUsers(User{Username: "alice", PasswordHash: mustHash(t, "hunter2")})

	if err := users.SetPassword("alice", "correct horse"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	if _, ok := users.Authenticate("alice", "hunter2"); ok {
		t.Error("old password should no longer work")
	}
	if _, ok := users.Authenticate("alice", "correct horse"); !ok {
		t.Error("new password should work")
	}

	if err := users.SetPassword("mallory", "x"); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("SetPassword(unknown) error = %v, want ErrUnknownUser", err)
	}
}

func TestUsers_DisableTwoFactor(t *testing.T) {
	users := NewUsers(User{Username: "bob", PasswordHash: mustHash(t, "pw"), TOTPSecret: rfc6238Secret})

	if err := users.DisableTwoFactor("bob"); err != nil {
		t.Fatalf("DisableTwoFactor() error = %v", err)
	}
	user, _ := users.Get("bob")
	if user.TOTPSecret != "" {
		t.Error("TOTP secret should be cleared")
	}
	if err := users.DisableTwoFactor("mallory"); !errors.Is(err, ErrUnknownUser) {
		t.Errorf("DisableTwoFactor(unknown) error = %v, want ErrUnknownUser", err)
	}
}

func TestUsers_Concurrent(t *testing.T) {
	users := NewUsers(User{Username: "alice", PasswordHash: mustHash(t, "hunter2"), TOTPSecret: rfc6238Secret})

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			users.Get("alice")
			_ = users.DisableTwoFactor("alice")
		})
	}
	wg.Wait()
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")) != nil {
		t.Error("hash does not verify")
	}
}

func TestUsers_Replace(t *testing.T) {
	users := NewUsers(User{Username: "alice", PasswordHash: mustHash(t, "hunter2")})

	users.Replace(
		User{Username: "bob", PasswordHash: mustHash(t, "pw")},
		User{Username: "carol", PasswordHash: mustHash(t, "pw")},
	)

	if users.Len() != 2 {
		t.Errorf("Len() = %d, want 2", users.Len())
	}
	if _, ok := users.Get("alice"); ok {
		t.Error("alice should be gone")
	}
	if _, ok := users.Authenticate("carol", "pw"); !ok {
		t.Error("carol should authenticate")
	}
}
