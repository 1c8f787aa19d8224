package keyserver

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrUnknownUser is returned for a username that is not registered.
var ErrUnknownUser = errors.New("unknown user")

// User is a registered account.
type User struct {
	Username string
	// PasswordHash is a bcrypt hash.
	PasswordHash string
	// TOTPSecret is a base32 secret. Empty disables 2FA for the account.
	TOTPSecret string
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// dummyHash is compared against when the username is unknown so that both
// failure paths take a bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("passcrypt"), bcrypt.DefaultCost)
	return hash
})

// Users is an in-memory account table. It is safe for concurrent use.
type Users struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewUsers returns a table holding users.
func NewUsers(users ...User) *Users {
	u := &Users{users: make(map[string]User, len(users))}
	for _, user := range users {
		u.users[user.Username] = user
	}
	return u
}

// Get returns the account for username.
func (u *Users) Get(username string) (User, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.users[username]
	return user, ok
}

// Authenticate checks password against the stored hash.
func (u *Users) Authenticate(username, password string) (User, bool) {
	user, ok := u.Get(username)
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return User{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, false
	}
	return user, true
}

// SetPassword replaces the password of username.
func (u *Users) SetPassword(username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[username]
	if !ok {
		return ErrUnknownUser
	}
	user.PasswordHash = hash
	u.users[username] = user
	return nil
}

// DisableTwoFactor removes the TOTP secret of username.
func (u *Users) DisableTwoFactor(username string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[username]
	if !ok {
		return ErrUnknownUser
	}
	user.TOTPSecret = ""
	u.users[username] = user
	return nil
}

// Replace swaps the whole table, e.g. after the configuration was
// reloaded.
func (u *Users) Replace(users ...User) {
	table := make(map[string]User, len(users))
	for _, user := range users {
		table[user.Username] = user
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.users = table
}

// Len returns the number of accounts.
func (u *Users) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.users)
}
