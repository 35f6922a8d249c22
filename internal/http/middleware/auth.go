package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/turismo/internal/auth"
	"github.com/ignatzorin/turismo/internal/logger"
	"github.com/ignatzorin/turismo/internal/pkg/apperror"
	"github.com/ignatzorin/turismo/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextIdentityKey  = "identity"
	ContextFlashKey     = "flash"
	ContextRequestIDKey = "requestID"
)

// Имена cookie.
const (
	SessionCookieName = "turismo_session"
	FlashCookieName   = "turismo_flash"
)

const flashTTL = 5 * time.Minute

// Flash категории.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

// IdentityResolver превращает значение cookie в Identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (auth.Identity, error)
}

// Sessions управляет cookie сессии и flash-сообщений.
type Sessions struct {
	resolver IdentityResolver
	tokens   *service.SessionManager
	secure   bool
}

// NewSessions создаёт менеджер cookie.
func NewSessions(resolver IdentityResolver, tokens *service.SessionManager, secure bool) *Sessions {
	return &Sessions{resolver: resolver, tokens: tokens, secure: secure}
}

// LoadIdentity определяет, кто делает запрос, и забирает отложенное flash-сообщение.
// Ошибка хранилища не прерывает запрос: посетитель считается анонимом.
func (s *Sessions) LoadIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		var identity auth.Identity = auth.Anonymous{}

		if raw, err := c.Cookie(SessionCookieName); err == nil && raw != "" {
			resolved, resolveErr := s.resolver.Resolve(c.Request.Context(), raw)
			switch {
			case resolveErr != nil:
				logger.WithContext(c.Request.Context()).WithFields(logrus.Fields{
					"error":      resolveErr.Error(),
					"request_id": c.GetString(ContextRequestIDKey),
				}).Warn("session: не удалось загрузить сессию")
			case isAnonymous(resolved):
				// Просроченную или отозванную сессию больше не присылаем.
				s.ClearSessionCookie(c)
			default:
				identity = resolved
			}
		}
		c.Set(ContextIdentityKey, identity)

		if raw, err := c.Cookie(FlashCookieName); err == nil && raw != "" {
			if flash, err := s.tokens.ParseFlashToken(raw); err == nil {
				c.Set(ContextFlashKey, &flash)
			}
			s.clearCookie(c, FlashCookieName)
		}

		c.Next()
	}
}

// RequireAuth пропускает только аутентифицированных посетителей,
// остальных отправляет на страницу входа.
func (s *Sessions) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.UserOf(CurrentIdentity(c)); ok {
			c.Next()
			return
		}
		s.SetFlash(c, FlashError, apperror.ErrUnauthenticated.Message)
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

func isAnonymous(identity auth.Identity) bool {
	_, ok := auth.UserOf(identity)
	return !ok
}

// CurrentIdentity возвращает Identity текущего запроса.
func CurrentIdentity(c *gin.Context) auth.Identity {
	raw, exists := c.Get(ContextIdentityKey)
	if !exists {
		return auth.Anonymous{}
	}
	identity, ok := raw.(auth.Identity)
	if !ok || identity == nil {
		return auth.Anonymous{}
	}
	return identity
}

// CurrentFlash возвращает flash-сообщение, пришедшее с запросом.
func CurrentFlash(c *gin.Context) *service.Flash {
	raw, exists := c.Get(ContextFlashKey)
	if !exists {
		return nil
	}
	flash, _ := raw.(*service.Flash)
	return flash
}

// SetSessionCookie выставляет cookie сессии до expiresAt.
func (s *Sessions) SetSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	s.setCookie(c, SessionCookieName, token, maxAge)
}

// ClearSessionCookie удаляет cookie сессии.
func (s *Sessions) ClearSessionCookie(c *gin.Context) {
	s.clearCookie(c, SessionCookieName)
}

// SetFlash откладывает сообщение до следующей отрисованной страницы.
func (s *Sessions) SetFlash(c *gin.Context, category, message string) {
	token, err := s.tokens.IssueFlashToken(service.Flash{Category: category, Message: message}, flashTTL)
	if err != nil {
		logger.WithContext(c.Request.Context()).WithField("error", err.Error()).Warn("session: flash не сохранён")
		return
	}
	s.setCookie(c, FlashCookieName, token, int(flashTTL.Seconds()))
}

func (s *Sessions) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", s.secure, true)
}

func (s *Sessions) clearCookie(c *gin.Context, name string) {
	s.setCookie(c, name, "", -1)
}
