// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/visibility"
)

var (
	// ErrNotFound — ресурс не найден (или принадлежит другому владельцу).
	ErrNotFound = errors.New("ресурс не найден")
	// ErrExpired — срок действия ссылки истёк.
	ErrExpired = errors.New("срок действия ссылки истёк")
	// ErrPasswordRequired — для приватной ссылки не передан пароль.
	ErrPasswordRequired = errors.New("требуется пароль")
	// ErrInvalidPassword — неверный пароль, можно повторить ввод.
	ErrInvalidPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — превышен лимит попыток ввода пароля.
	ErrTooManyAttempts = errors.New("слишком много попыток ввода пароля")
	// ErrCommentsDisabled — комментарии для ссылки запрещены.
	ErrCommentsDisabled = errors.New("комментарии для ссылки отключены")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
)

// CategoryProject — категория уведомления о незагруженной карточке проекта.
// Не входит в visibility.AllCategories: карточка показывается всегда.
const CategoryProject visibility.Category = "project"

// CategoryError — уведомление о категории данных, которую не удалось загрузить
// после успешной авторизации. Остальные категории отдаются как обычно.
type CategoryError struct {
	Category visibility.Category `json:"category"`
	Message  string              `json:"message"`
}
