package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bibliomemory/bibliomemory-backend/internal/pkg/ctxutil"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
)

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if actor := ctxutil.GetActor(c.Request.Context()); actor != nil {
			fields = append(fields, "user_id", actor.UserID.String(), "role", string(actor.Role))
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
