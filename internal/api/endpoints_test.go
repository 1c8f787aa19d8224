package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testPublicKeyHex = "0460fed4ba255a9d31c961eb74c6356d68c049b8923b61fa6ce669622e60f29fb6" +
	"7903fe1008b8bc99a41ae9e95628bc64f2f1b20c2d7e9f5177a3c294d4462299"

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestGetPublicKey(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != PathPublicKey {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(PublicKeyResponse{PublicKey: testPublicKeyHex, Algorithm: "ECC-secp256r1"})
	})

	resp, err := client.GetPublicKey(context.Background())
	if err != nil {
		t.Fatalf("GetPublicKey() error = %v", err)
	}
	if resp.PublicKey != testPublicKeyHex {
		t.Errorf("PublicKey = %s", resp.PublicKey)
	}
}

func TestGetPublicKey_ResponseShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"no algorithm", `{"public_key": "` + testPublicKeyHex + `"}`, nil},
		{"missing key", `{"algorithm": "ECC-secp256r1"}`, ErrInvalidResponse},
		{"empty key", `{"public_key": ""}`, ErrInvalidResponse},
		{"key not a string", `{"public_key": 42}`, ErrInvalidResponse},
		{"array", `["` + testPublicKeyHex + `"]`, ErrInvalidResponse},
		{"html", `<html></html>`, ErrInvalidResponse},
		{"wrong algorithm", `{"public_key": "` + testPublicKeyHex + `", "algorithm": "X25519"}`, ErrUnsupportedAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			hex, err := client.FetchPublicKey(context.Background())
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("FetchPublicKey() error = %v", err)
				}
				if hex != testPublicKeyHex {
					t.Errorf("FetchPublicKey() = %s", hex)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetPublicKey_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Detail: "key store unavailable"})
	})

	_, err := client.FetchPublicKey(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "key store unavailable" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		req      LoginRequest
		response StatusResponse
		wantTOTP bool
	}{
		{
			name:     "success",
			req:      LoginRequest{Username: "alice", Password: "blob"},
			response: StatusResponse{Status: StatusSuccess, Username: "alice"},
		},
		{
			name:     "requires 2fa",
			req:      LoginRequest{Username: "alice", Password: "blob"},
			response: StatusResponse{Status: StatusRequire2FA, Username: "alice"},
		},
		{
			name:     "with totp",
			req:      LoginRequest{Username: "alice", Password: "blob", TOTPCode: "123456"},
			response: StatusResponse{Status: StatusSuccess, Username: "alice"},
			wantTOTP: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != PathLogin {
					t.Errorf("request = %s %s", r.Method, r.URL.Path)
				}

				var raw map[string]any
				if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
					t.Error(err)
					return
				}
				if raw["username"] != tt.req.Username || raw["password"] != tt.req.Password {
					t.Errorf("body = %v", raw)
				}
				if _, ok := raw["totp_code"]; ok != tt.wantTOTP {
					t.Errorf("totp_code present = %v, want %v", ok, tt.wantTOTP)
				}

				json.NewEncoder(w).Encode(tt.response)
			})

			resp, err := client.Login(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if *resp != tt.response {
				t.Errorf("Login() = %+v, want %+v", *resp, tt.response)
			}
		})
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ErrorResponse{Detail: "wrong username or password"})
	})

	_, err := client.Login(context.Background(), LoginRequest{Username: "alice", Password: "blob"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathChangePassword {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
			return
		}
		if req.OldPassword != "old-blob" || req.NewPassword != "new-blob" {
			t.Errorf("body = %+v", req)
		}
		json.NewEncoder(w).Encode(StatusResponse{Status: StatusSuccess})
	})

	resp, err := client.ChangePassword(context.Background(), ChangePasswordRequest{OldPassword: "old-blob", NewPassword: "new-blob"})
	if err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if resp.Status != StatusSuccess {
		t.Errorf("Status = %s", resp.Status)
	}
}

func TestDisableTwoFactor(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathDisableTwoFactor {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req DisableTwoFactorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
			return
		}
		if req.Password != "blob" {
			t.Errorf("body = %+v", req)
		}
		json.NewEncoder(w).Encode(StatusResponse{Status: StatusSuccess})
	})

	if _, err := client.DisableTwoFactor(context.Background(), DisableTwoFactorRequest{Password: "blob"}); err != nil {
		t.Fatalf("DisableTwoFactor() error = %v", err)
	}
}
