package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/turismo/internal/models"
)

const (
	sessionAudience = "session"
	flashAudience   = "flash"
)

// ErrInvalidToken возвращается для подделанных, просроченных и чужих токенов.
var ErrInvalidToken = errors.New("invalid token")

// SessionManager подписывает и проверяет значения cookie сессии и flash-сообщений.
// Сами сессии хранятся в базе, в cookie лежит только подписанная ссылка на запись.
type SessionManager struct {
	secret []byte
}

// NewSessionManager создаёт менеджер, подписывающий токены ключом SECRET_KEY.
func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{secret: []byte(secret)}
}

// IssueSessionToken выпускает значение cookie для сохранённой сессии.
func (m *SessionManager) IssueSessionToken(session *models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(session.UserID, 10),
		ID:        session.ID.String(),
		Audience:  jwt.ClaimStrings{sessionAudience},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	return m.sign(claims)
}

// ParseSessionToken проверяет подпись и срок, возвращает ID сессии и пользователя.
func (m *SessionManager) ParseSessionToken(token string) (uuid.UUID, int64, error) {
	claims := &jwt.RegisteredClaims{}
	if err := m.parse(token, claims, sessionAudience); err != nil {
		return uuid.Nil, 0, err
	}

	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("%w: session id: %v", ErrInvalidToken, err)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return uuid.Nil, 0, fmt.Errorf("%w: subject %q", ErrInvalidToken, claims.Subject)
	}

	return sessionID, userID, nil
}

// Flash хранит одноразовое сообщение, переживающее редирект.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type flashClaims struct {
	Flash
	jwt.RegisteredClaims
}

// IssueFlashToken упаковывает flash-сообщение в короткоживущий подписанный токен.
func (m *SessionManager) IssueFlashToken(flash Flash, ttl time.Duration) (string, error) {
	now := time.Now()
	return m.sign(flashClaims{
		Flash: flash,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{flashAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
}

// ParseFlashToken возвращает flash-сообщение из токена.
func (m *SessionManager) ParseFlashToken(token string) (Flash, error) {
	claims := &flashClaims{}
	if err := m.parse(token, claims, flashAudience); err != nil {
		return Flash{}, err
	}
	return claims.Flash, nil
}

func (m *SessionManager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("session manager: не удалось подписать токен: %w", err)
	}
	return signed, nil
}

func (m *SessionManager) parse(token string, claims jwt.Claims, audience string) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
