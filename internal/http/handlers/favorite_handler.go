package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/turismo/internal/http/handlers/common"
	"github.com/ignatzorin/turismo/internal/http/middleware"
	"github.com/ignatzorin/turismo/internal/pkg/apperror"
	"github.com/ignatzorin/turismo/internal/service"
)

type FavoriteHandler struct {
	svc      *service.FavoriteService
	sessions *middleware.Sessions
}

func NewFavoriteHandler(s *service.FavoriteService, sessions *middleware.Sessions) *FavoriteHandler {
	return &FavoriteHandler{svc: s, sessions: sessions}
}

// Toggle POST /toggle_favorite/:activity_id
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		_ = c.Error(apperror.ErrUnauthenticated)
		return
	}

	activityID, ok := middleware.IDParam(c, "activity_id")
	if !ok {
		middleware.NotFound(c)
		return
	}

	added, err := h.svc.Toggle(c.Request.Context(), user, activityID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if added {
		h.sessions.SetFlash(c, middleware.FlashSuccess, "Добавлено в избранное.")
	} else {
		h.sessions.SetFlash(c, middleware.FlashInfo, "Удалено из избранного.")
	}
	c.Redirect(http.StatusSeeOther, "/activity/"+strconv.FormatInt(activityID, 10))
}
