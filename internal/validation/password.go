package validation

import "fmt"

const (
	MinPasswordLength = 6
	// MaxPasswordBytes ограничен 72 байтами bcrypt.
	MaxPasswordBytes = 72
)

// ValidatePassword проверяет пароль при регистрации.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("пароль обязателен")
	}
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("пароль должен быть не длиннее %d байт", MaxPasswordBytes)
	}
	return nil
}
