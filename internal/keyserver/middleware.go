package keyserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prettyserver/passcrypt/internal/api"
)

const requestIDKey = "request_id"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(api.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(api.RequestIDHeader, id)
		c.Next()
	}
}

// accessLog logs one line per request. Bodies are never logged since they
// carry password blobs.
func accessLog(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event = event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey))

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}
		event.Msg("request")
	}
}

func recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		logger.Error().
			Interface("panic", rec).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("handler panicked")
		abort(c, http.StatusInternalServerError, "internal server error")
	})
}

func (s *Server) requireSession(c *gin.Context) {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		abort(c, http.StatusUnauthorized, "not logged in")
		return
	}
	username, ok := s.sessions.lookup(id)
	if !ok {
		abort(c, http.StatusUnauthorized, "not logged in")
		return
	}
	c.Set(userKey, username)
	c.Next()
}

func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Detail: detail})
}
