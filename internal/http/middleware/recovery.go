package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/turismo/internal/logger"
)

// Recovery перехватывает панику хэндлера и отдаёт страницу 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithContext(c.Request.Context()).WithFields(logrus.Fields{
			"panic":      fmt.Sprint(recovered),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString(ContextRequestIDKey),
		}).Error("panic recovered")

		if c.Writer.Written() {
			c.Abort()
			return
		}
		RenderError(c, http.StatusInternalServerError, "внутренняя ошибка сервера")
		c.Abort()
	})
}
