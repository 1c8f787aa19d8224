package passcrypt

import (
	"context"
	"crypto/ecdh"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prettyserver/passcrypt/internal/crypto"
)

// Known-answer vector: "hunter2" sealed to testServerPub with the ephemeral
// scalar testEphPriv.
const (
	testServerPriv = "c9afa9d845ba75166b5c215767b1d6934e50c3db36e89b127b8a622b120f6721"
	testServerPub  = "0460fed4ba255a9d31c961eb74c6356d68c049b8923b61fa6ce669622e60f29fb6" +
		"7903fe1008b8bc99a41ae9e95628bc64f2f1b20c2d7e9f5177a3c294d4462299"
	testEphPriv = "7f3c1a9e5b2d4c6e8f0a1b3c5d7e9f2a4b6c8d0e1f3a5b7c9d1e3f5a7b9c0d2e"
	testBlob    = "BHyz1Rl7DbXLI0Hb/bqm3YALpV46h+Hhxo4RdXgS6I0vjshHc84Gdjevxht1WCPYcT96E/9e8nLQZqbLn08zyIJp9fCSU8lZWdCT/tUryRTNIk/oaJVN5Q=="
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func testServerKey(t testing.TB) *ecdh.PrivateKey {
	t.Helper()
	priv, err := ecdh.P256().NewPrivateKey(mustHex(t, testServerPriv))
	if err != nil {
		t.Fatal(err)
	}
	return priv
}

func testPublicKey(t testing.TB) PublicKey {
	t.Helper()
	key, err := ParsePublicKeyHex(testServerPub)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

type countingReader struct {
	n atomic.Int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	r.n.Add(1)
	for i := range p {
		p[i] = 0x11
	}
	return len(p), nil
}

// staticSource is a PublicKeySource that skips validation.
type staticSource struct {
	key PublicKey
	err error
}

func (s staticSource) GetPublicKey(context.Context) (PublicKey, error) {
	return s.key, s.err
}

// fakeServer is an in-memory stand-in for the password endpoints. It opens
// every blob with the test server key.
type fakeServer struct {
	t         *testing.T
	priv      *ecdh.PrivateKey
	publicHex string

	mu        sync.Mutex
	passwords map[string]string
	twoFactor map[string]bool
	sessions  map[string]string
	blobs     []string

	keyRequests   atomic.Int64
	loginRequests atomic.Int64
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{
		t:         t,
		priv:      testServerKey(t),
		publicHex: testServerPub,
		passwords: map[string]string{"alice": "hunter2", "bob": "correct horse"},
		twoFactor: map[string]bool{"bob": true},
		sessions:  map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/crypto/public-key", fs.publicKey)
	mux.HandleFunc("POST /api/auth/login", fs.login)
	mux.HandleFunc("POST /api/auth/changepassword", fs.changePassword)
	mux.HandleFunc("POST /api/auth/2fa/disable", fs.disableTwoFactor)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return fs, server
}

func (fs *fakeServer) publicKey(w http.ResponseWriter, r *http.Request) {
	fs.keyRequests.Add(1)
	fs.mu.Lock()
	publicHex := fs.publicHex
	fs.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{
		"public_key": publicHex,
		"algorithm":  crypto.Algorithm,
	})
}

func (fs *fakeServer) open(w http.ResponseWriter, blob string) (string, bool) {
	fs.mu.Lock()
	fs.blobs = append(fs.blobs, blob)
	fs.mu.Unlock()

	pw, err := crypto.OpenString(fs.priv, blob)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid password format"})
		return "", false
	}
	return pw, true
}

func (fs *fakeServer) login(w http.ResponseWriter, r *http.Request) {
	fs.loginRequests.Add(1)

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		TOTPCode string `json:"totp_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad json"})
		return
	}

	pw, ok := fs.open(w, req.Password)
	if !ok {
		return
	}

	fs.mu.Lock()
	want, known := fs.passwords[req.Username]
	needs2FA := fs.twoFactor[req.Username]
	fs.mu.Unlock()

	if !known || pw != want {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "wrong username or password"})
		return
	}
	if needs2FA && req.TOTPCode == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "require_2fa", "message": "enter code", "username": req.Username})
		return
	}
	if needs2FA && req.TOTPCode != "123456" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "wrong code"})
		return
	}

	sid := req.Username + "-session"
	fs.mu.Lock()
	fs.sessions[sid] = req.Username
	fs.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "session", Value: sid, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "ok", "username": req.Username})
}

func (fs *fakeServer) user(r *http.Request) (string, bool) {
	c, err := r.Cookie("session")
	if err != nil {
		return "", false
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	u, ok := fs.sessions[c.Value]
	return u, ok
}

func (fs *fakeServer) changePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := fs.user(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "not logged in"})
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad json"})
		return
	}

	oldPW, ok := fs.open(w, req.OldPassword)
	if !ok {
		return
	}
	newPW, ok := fs.open(w, req.NewPassword)
	if !ok {
		return
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.passwords[user] != oldPW {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "wrong old password"})
		return
	}
	fs.passwords[user] = newPW
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (fs *fakeServer) disableTwoFactor(w http.ResponseWriter, r *http.Request) {
	user, ok := fs.user(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "not logged in"})
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad json"})
		return
	}

	pw, ok := fs.open(w, req.Password)
	if !ok {
		return
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.passwords[user] != pw {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "wrong password"})
		return
	}
	fs.twoFactor[user] = false
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var errBoom = errors.New("boom")
