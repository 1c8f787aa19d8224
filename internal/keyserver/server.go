// Package keyserver is the server half of the password transport: it
// publishes the key from a keystore and opens the encrypted passwords that
// arrive on the auth endpoints.
package keyserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/prettyserver/passcrypt/internal/api"
)

// KeyStore is the server key pair as seen by the handlers.
type KeyStore interface {
	PublicKeyHex() string
	Decrypt(blob string) (string, error)
}

// Server serves the key and auth endpoints.
type Server struct {
	keys     KeyStore
	users    *Users
	sessions *sessions
	logger   zerolog.Logger
	now      func() time.Time
	engine   *gin.Engine
}

// New builds a Server over keys and users.
func New(keys KeyStore, users *Users, logger zerolog.Logger) *Server {
	s := &Server{
		keys:   keys,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
	s.sessions = newSessions(func() time.Time { return s.now() })

	engine := gin.New()
	engine.Use(requestID(), accessLog(logger), recovery(logger))
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, "not found")
	})
	engine.NoMethod(func(c *gin.Context) {
		abort(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	engine.GET(api.PathPublicKey, s.handlePublicKey)
	engine.POST(api.PathLogin, s.handleLogin)
	engine.POST(api.PathLogout, s.handleLogout)
	engine.GET(api.PathAuthStatus, s.handleStatus)

	auth := engine.Group("", s.requireSession)
	auth.POST(api.PathChangePassword, s.handleChangePassword)
	auth.POST(api.PathDisableTwoFactor, s.handleDisableTwoFactor)

	s.engine = engine
	return s
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("key server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info().Msg("key server stopped")
	return nil
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
