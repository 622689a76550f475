package ui

import (
	"time"

	"edabench/domain/core"
	"edabench/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionKey = "session"

// setupMiddleware installs panic recovery and request logging
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery(), s.requestLogger())
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("session", id))
		}
		switch {
		case c.Writer.Status() >= 500:
			s.logger.Error("request", fields...)
		case c.Writer.Status() >= 400:
			s.logger.Warn("request", fields...)
		default:
			s.logger.Debug("request", fields...)
		}
	}
}

// resolveSession loads the session named by :id into the context
func (s *Server) resolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseSessionID(c.Param("id"))
		if err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		sess, err := s.sessions.Get(id)
		if err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
