package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger пишет в лог каждый запрос. Приватные ошибки хендлеров попадают только сюда.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithFields(logrus.Fields{
		"component": "api",
		"module":    "http",
	})
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		}
		if userID, ok := c.Get(CurrentUserIDKey); ok {
			fields["userID"] = userID
		}

		le := entry.WithFields(fields)
		switch {
		case len(c.Errors) > 0:
			le.WithField("errors", c.Errors.String()).Error("request")
		case c.Writer.Status() >= 500: //nolint:mnd
			le.Error("request")
		default:
			le.Info("request")
		}
	}
}
