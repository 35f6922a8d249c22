package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/turismo/internal/http/middleware"
	"github.com/ignatzorin/turismo/internal/service"
)

// ActivityHandler отдаёт страницы каталога.
type ActivityHandler struct {
	catalog *service.CatalogService
}

func NewActivityHandler(catalog *service.CatalogService) *ActivityHandler {
	return &ActivityHandler{catalog: catalog}
}

// Index GET /
func (h *ActivityHandler) Index(c *gin.Context) {
	activities, err := h.catalog.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	middleware.Render(c, http.StatusOK, "index.html", gin.H{
		"Title":      "Активности",
		"Activities": activities,
	})
}

// Show GET /activity/:id
func (h *ActivityHandler) Show(c *gin.Context) {
	id, ok := middleware.IDParam(c, "id")
	if !ok {
		middleware.NotFound(c)
		return
	}

	detail, err := h.catalog.Detail(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	middleware.Render(c, http.StatusOK, "activity.html", gin.H{
		"Title":      detail.Activity.Name,
		"Activity":   detail.Activity,
		"IsFavorite": detail.IsFavorite,
	})
}

// Favorites GET /favorites
func (h *ActivityHandler) Favorites(c *gin.Context) {
	activities, err := h.catalog.Favorites(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	middleware.Render(c, http.StatusOK, "favorites.html", gin.H{
		"Title":      "Избранное",
		"Activities": activities,
	})
}
