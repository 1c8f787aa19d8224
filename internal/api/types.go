package api

// PublicKeyResponse is the body of GET /api/crypto/public-key.
type PublicKeyResponse struct {
	// PublicKey is the uncompressed P-256 point as 130 hex characters.
	PublicKey string `json:"public_key"`
	// Algorithm is optional; when present it must be "ECC-secp256r1".
	Algorithm string `json:"algorithm,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login. Password is a wire blob.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// ChangePasswordRequest is the body of POST /api/auth/changepassword. Both
// passwords are wire blobs.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// DisableTwoFactorRequest is the body of POST /api/auth/2fa/disable.
type DisableTwoFactorRequest struct {
	Password string `json:"password"`
}

// StatusResponse is returned by the auth endpoints.
type StatusResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Username string `json:"username,omitempty"`
}

// Auth status values.
const (
	StatusSuccess    = "success"
	StatusRequire2FA = "require_2fa"
)

// ErrorResponse is the error body written by the server.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
