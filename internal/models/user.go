package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает зарегистрированного посетителя сайта.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Session представляет сохранённую сессию браузера.
type Session struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	UserAgent *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired сообщает, истекла ли сессия к моменту now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
