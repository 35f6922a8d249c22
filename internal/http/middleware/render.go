package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/turismo/internal/auth"
)

// Render отрисовывает страницу, добавляя в данные имя пользователя и flash-сообщение.
// Если в data уже есть "Flash", оно показывается вместо отложенного.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if user, ok := auth.UserOf(CurrentIdentity(c)); ok {
		data["User"] = user.Username
	} else {
		data["User"] = ""
	}

	if _, exists := data["Flash"]; !exists {
		if flash := CurrentFlash(c); flash != nil {
			data["Flash"] = flash
		}
	}

	c.HTML(status, name, data)
}
