package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/turismo/internal/logger"
	"github.com/ignatzorin/turismo/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки, добавленные хэндлерами через c.Error.
// Внутренние ошибки логируются и показываются посетителю без подробностей.
func ErrorHandler(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Ответ уже отправлен
		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if errors.Is(err, apperror.ErrUnauthenticated) {
			sessions.SetFlash(c, FlashError, apperror.UserMessage(err))
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}

		status := apperror.HTTPStatus(err)
		fields := logrus.Fields{
			"error":      err.Error(),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"status":     status,
			"request_id": c.GetString(ContextRequestIDKey),
		}
		if status >= http.StatusInternalServerError {
			logger.WithContext(c.Request.Context()).WithFields(fields).Error("Request error")
		} else {
			logger.WithContext(c.Request.Context()).WithFields(fields).Debug("Request error")
		}

		RenderError(c, status, apperror.UserMessage(err))
	}
}

// RenderError отрисовывает страницу ошибки.
func RenderError(c *gin.Context, status int, message string) {
	Render(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// NotFound отдаёт страницу 404 для неизвестных маршрутов.
func NotFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, "страница не найдена")
}
