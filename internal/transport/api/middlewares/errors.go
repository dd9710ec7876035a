package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func statusErrorText(status int) string {
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return "internal server error"
}

// Errors отдает клиенту первую ошибку из c.Errors в виде {"error": "..."}.
//
// Публичные ошибки (gin.ErrorTypePublic) отдаются как есть, для остальных только текст статуса, чтобы внутренние
// подробности (ответ поставщика, ошибки базы) не попадали наружу. Если обработчик не выставил статус ошибки,
// отдается 500. Клиентам, явно запросившим text/plain, сообщение отдается строкой.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}

		firstErr := c.Errors[0]
		msg := statusErrorText(status)
		if firstErr.IsType(gin.ErrorTypePublic) {
			msg = firstErr.Error()
		}

		accept := c.GetHeader("Accept")
		if strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json") {
			c.String(status, msg)
		} else {
			c.JSON(status, gin.H{"error": msg})
		}
		c.Abort()
	}
}
