package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const paramIDPrefix = "param:"

// IDValidator проверяет, что параметр является положительным целым числом.
// Иначе отдаёт 404: такой активности быть не может.
// Использование: router.GET("/activity/:id", IDValidator("id"), handler.Show)
func IDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
		if err != nil || id <= 0 {
			RenderError(c, http.StatusNotFound, "страница не найдена")
			c.Abort()
			return
		}

		c.Set(paramIDPrefix+paramName, id)
		c.Next()
	}
}

// IDParam возвращает значение, проверенное IDValidator. Без валидатора парсит параметр сам.
func IDParam(c *gin.Context, paramName string) (int64, bool) {
	if raw, exists := c.Get(paramIDPrefix + paramName); exists {
		id, ok := raw.(int64)
		return id, ok
	}
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
