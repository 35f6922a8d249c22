// Package auth описывает, от чьего имени выполняется запрос.
package auth

import "github.com/google/uuid"

// Identity реализуют только Anonymous и Authenticated.
type Identity interface {
	isIdentity()
}

// Anonymous описывает посетителя без активной сессии.
type Anonymous struct{}

// Authenticated описывает посетителя с действующей сессией.
type Authenticated struct {
	UserID    int64
	Username  string
	SessionID uuid.UUID
}

func (Anonymous) isIdentity()     {}
func (Authenticated) isIdentity() {}

// UserOf возвращает данные пользователя, если identity аутентифицирована.
func UserOf(id Identity) (Authenticated, bool) {
	a, ok := id.(Authenticated)
	return a, ok
}
