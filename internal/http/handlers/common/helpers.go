package common

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/turismo/internal/auth"
	"github.com/ignatzorin/turismo/internal/http/middleware"
	"github.com/ignatzorin/turismo/internal/service"
)

// SessionMeta собирает сведения о браузере для новой сессии.
func SessionMeta(c *gin.Context) service.SessionMeta {
	return service.SessionMeta{
		UserAgent: truncate(c.GetHeader("User-Agent"), 512),
		IP:        c.ClientIP(),
		Current:   middleware.CurrentIdentity(c),
	}
}

// CurrentUser возвращает аутентифицированного пользователя запроса.
func CurrentUser(c *gin.Context) (auth.Authenticated, bool) {
	return auth.UserOf(middleware.CurrentIdentity(c))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
