// password.go — хэширование паролей приватных ссылок (bcrypt).
package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher хэширует и сверяет пароли ссылок.
// Реализует access.PasswordVerifier.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher создаёт хэшер с указанной стоимостью bcrypt.
func NewPasswordHasher(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Hash возвращает bcrypt-хэш пароля.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: пароль длиннее 72 байт", ErrValidation)
		}
		return "", fmt.Errorf("хэширование пароля: %w", err)
	}
	return string(hash), nil
}

// Verify сравнивает пароль с хэшем за постоянное время.
func (h *PasswordHasher) Verify(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}
