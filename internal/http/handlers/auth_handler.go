package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/turismo/internal/http/handlers/common"
	"github.com/ignatzorin/turismo/internal/http/middleware"
	"github.com/ignatzorin/turismo/internal/logger"
	"github.com/ignatzorin/turismo/internal/pkg/apperror"
	"github.com/ignatzorin/turismo/internal/service"
)

// AuthHandler предоставляет HTTP слой для регистрации, входа и выхода.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *middleware.Sessions
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth *service.AuthService, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

type credentialsForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// LoginForm обрабатывает GET /login.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	middleware.Render(c, http.StatusOK, "login.html", gin.H{
		"Title":    "Вход",
		"Username": "",
	})
}

// Login обрабатывает POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, "login.html", "Вход", form.Username, apperror.Validation(err))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Username: form.Username,
		Password: form.Password,
	}, common.SessionMeta(c))
	if err != nil {
		h.renderForm(c, "login.html", "Вход", form.Username, err)
		return
	}

	h.sessions.SetSessionCookie(c, result.Token, result.ExpiresAt)
	h.sessions.SetFlash(c, middleware.FlashSuccess, "Добро пожаловать, "+result.User.Username+"!")
	c.Redirect(http.StatusSeeOther, "/")
}

// RegisterForm обрабатывает GET /register.
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	middleware.Render(c, http.StatusOK, "register.html", gin.H{
		"Title":    "Регистрация",
		"Username": "",
	})
}

// Register обрабатывает POST /register.
func (h *AuthHandler) Register(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, "register.html", "Регистрация", form.Username, apperror.Validation(err))
		return
	}

	if _, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username: form.Username,
		Password: form.Password,
	}); err != nil {
		h.renderForm(c, "register.html", "Регистрация", form.Username, err)
		return
	}

	h.sessions.SetFlash(c, middleware.FlashSuccess, "Регистрация прошла успешно. Теперь можно войти.")
	c.Redirect(http.StatusSeeOther, "/login")
}

// Logout обрабатывает GET /logout. Cookie очищается в любом случае,
// неудалённая строка сессии истечёт по своему TTL.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.ClearSessionCookie(c)

	ctx := c.Request.Context()
	if err := h.auth.Logout(ctx, middleware.CurrentIdentity(c)); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("auth handler: не удалось удалить сессию при выходе")
	}

	h.sessions.SetFlash(c, middleware.FlashInfo, "Вы вышли из аккаунта.")
	c.Redirect(http.StatusSeeOther, "/")
}

// renderForm показывает форму повторно с сообщением об ошибке.
// Ошибки, которые нельзя показать посетителю, уходят в ErrorHandler.
func (h *AuthHandler) renderForm(c *gin.Context, page, title, username string, err error) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.Code == apperror.ErrCodeInternal {
		_ = c.Error(err)
		return
	}

	middleware.Render(c, appErr.HTTPStatus, page, gin.H{
		"Title":    title,
		"Username": username,
		"Flash":    &service.Flash{Category: middleware.FlashError, Message: appErr.Message},
	})
}
