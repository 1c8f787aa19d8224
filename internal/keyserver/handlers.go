package keyserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prettyserver/passcrypt/internal/api"
	"github.com/prettyserver/passcrypt/internal/crypto"
)

const userKey = "user"

// Error details written by the auth endpoints.
const (
	detailMissingCredentials = "username and password are required"
	detailMissingPasswords   = "old and new password are required"
	detailMissingPassword    = "password is required"
	detailPasswordFormat     = "invalid password format"
	detailBadCredentials     = "invalid username or password"
	detailWrongPassword      = "incorrect password"
	detailBadTOTP            = "invalid 2FA code"
	detailMalformedBody      = "malformed request body"
)

func (s *Server) handlePublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, api.PublicKeyResponse{
		PublicKey: s.keys.PublicKeyHex(),
		Algorithm: crypto.Algorithm,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, detailMalformedBody)
		return
	}
	if req.Username == "" || req.Password == "" {
		abort(c, http.StatusBadRequest, detailMissingCredentials)
		return
	}

	password, ok := s.decrypt(c, req.Password)
	if !ok {
		return
	}

	user, ok := s.users.Authenticate(req.Username, password)
	if !ok {
		s.logger.Info().Str("username", req.Username).Msg("login rejected")
		abort(c, http.StatusUnauthorized, detailBadCredentials)
		return
	}

	if user.TOTPSecret != "" {
		if req.TOTPCode == "" {
			c.JSON(http.StatusOK, api.StatusResponse{
				Status:   api.StatusRequire2FA,
				Message:  "2FA code required",
				Username: user.Username,
			})
			return
		}
		if !validTOTP(user.TOTPSecret, req.TOTPCode, s.now()) {
			s.logger.Info().Str("username", req.Username).Msg("2FA code rejected")
			abort(c, http.StatusUnauthorized, detailBadTOTP)
			return
		}
	}

	id := s.sessions.create(user.Username)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookie, id, int(sessionTTL.Seconds()), "/", "", c.Request.TLS != nil, true)

	s.logger.Info().Str("username", user.Username).Msg("login succeeded")
	c.JSON(http.StatusOK, api.StatusResponse{
		Status:   api.StatusSuccess,
		Message:  "logged in",
		Username: user.Username,
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	if id, err := c.Cookie(SessionCookie); err == nil {
		s.sessions.delete(id)
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, api.StatusResponse{Status: api.StatusSuccess, Message: "logged out"})
}

func (s *Server) handleStatus(c *gin.Context) {
	resp := gin.H{"logged_in": false, "username": nil}
	if id, err := c.Cookie(SessionCookie); err == nil {
		if username, ok := s.sessions.lookup(id); ok {
			resp = gin.H{"logged_in": true, "username": username}
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleChangePassword(c *gin.Context) {
	username := c.GetString(userKey)

	var req api.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, detailMalformedBody)
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		abort(c, http.StatusBadRequest, detailMissingPasswords)
		return
	}

	oldPassword, ok := s.decrypt(c, req.OldPassword)
	if !ok {
		return
	}
	newPassword, ok := s.decrypt(c, req.NewPassword)
	if !ok {
		return
	}

	if _, ok := s.users.Authenticate(username, oldPassword); !ok {
		abort(c, http.StatusUnauthorized, detailWrongPassword)
		return
	}
	if err := s.users.SetPassword(username, newPassword); err != nil {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "could not update password")
		return
	}

	s.logger.Info().Str("username", username).Msg("password changed")
	c.JSON(http.StatusOK, api.StatusResponse{Status: api.StatusSuccess, Message: "password changed"})
}

func (s *Server) handleDisableTwoFactor(c *gin.Context) {
	username := c.GetString(userKey)

	var req api.DisableTwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, detailMalformedBody)
		return
	}
	if req.Password == "" {
		abort(c, http.StatusBadRequest, detailMissingPassword)
		return
	}

	password, ok := s.decrypt(c, req.Password)
	if !ok {
		return
	}
	if _, ok := s.users.Authenticate(username, password); !ok {
		abort(c, http.StatusUnauthorized, detailWrongPassword)
		return
	}
	if err := s.users.DisableTwoFactor(username); err != nil {
		_ = c.Error(err)
		abort(c, http.StatusNotFound, "user not found")
		return
	}

	s.logger.Info().Str("username", username).Msg("2FA disabled")
	c.JSON(http.StatusOK, api.StatusResponse{Status: api.StatusSuccess, Message: "2FA disabled"})
}

// decrypt opens a password blob or writes a 400. A blob that does not
// authenticate is never used as a plaintext password.
func (s *Server) decrypt(c *gin.Context, blob string) (string, bool) {
	password, err := s.keys.Decrypt(blob)
	if err != nil {
		s.logger.Warn().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("password decryption failed")
		abort(c, http.StatusBadRequest, detailPasswordFormat)
		return "", false
	}
	return password, true
}
