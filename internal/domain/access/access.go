// Пакет access — конечный автомат разрешения ссылки доступа.
//
// Жизненный цикл одной попытки (один HTTP-запрос):
//   - loading → not_found | expired | pending_password | authorized
//   - pending_password → pending_password (неверный пароль) | authorized
//   - authorized → data_error (не удалось загрузить данные проекта)
//
// Состояние попытки не переживает запрос: каждый запрос заново проверяет
// срок действия и пароль. Attempt не потокобезопасен.
package access

import (
	"errors"
	"fmt"
	"time"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
)

// State — состояние попытки разрешения ссылки.
type State string

const (
	StateLoading         State = "loading"
	StateNotFound        State = "not_found"
	StateExpired         State = "expired"
	StatePendingPassword State = "pending_password"
	StateAuthorized      State = "authorized"
	StateDataError       State = "data_error"
)

// ErrPasswordMismatch — введён неверный пароль. Попытка остаётся в pending_password.
var ErrPasswordMismatch = errors.New("неверный пароль")

// validTransitions — матрица допустимых переходов.
var validTransitions = map[State]map[State]bool{
	StateLoading: {
		StateNotFound:        true,
		StateExpired:         true,
		StatePendingPassword: true,
		StateAuthorized:      true,
	},
	StatePendingPassword: {StatePendingPassword: true, StateAuthorized: true},
	StateAuthorized:      {StateDataError: true},
	StateNotFound:        {},
	StateExpired:         {},
	StateDataError:       {},
}

// PasswordVerifier сверяет введённый пароль с сохранённым значением.
type PasswordVerifier interface {
	Verify(stored, candidate string) bool
}

// Attempt — одна попытка разрешения ссылки.
type Attempt struct {
	state    State
	link     *model.ShareLink
	now      time.Time
	verifier PasswordVerifier
	history  []State
}

// NewAttempt создаёт попытку в состоянии loading.
// now фиксируется на всю попытку.
func NewAttempt(now time.Time, verifier PasswordVerifier) *Attempt {
	return &Attempt{
		state:    StateLoading,
		now:      now,
		verifier: verifier,
		history:  []State{StateLoading},
	}
}

// State возвращает текущее состояние.
func (a *Attempt) State() State {
	return a.state
}

// Link возвращает загруженную ссылку (nil до Load или при not_found).
func (a *Attempt) Link() *model.ShareLink {
	return a.link
}

// History возвращает пройденные состояния (копия).
func (a *Attempt) History() []State {
	result := make([]State, len(a.history))
	copy(result, a.history)
	return result
}

// Load обрабатывает результат загрузки ссылки.
// nil или неактивная ссылка → not_found; истёкшая → expired;
// public → authorized; private → pending_password.
func (a *Attempt) Load(link *model.ShareLink) (State, error) {
	var target State
	switch {
	case link == nil || !link.IsActive:
		target = StateNotFound
	case link.ExpiredAt(a.now):
		target = StateExpired
	case link.ShareType == model.ShareTypePublic:
		target = StateAuthorized
	default:
		target = StatePendingPassword
	}

	if err := a.transition(target); err != nil {
		return a.state, err
	}
	if target != StateNotFound {
		a.link = link
	}
	return a.state, nil
}

// SubmitPassword проверяет пароль в состоянии pending_password.
// Совпадение → authorized. Несовпадение → ErrPasswordMismatch,
// состояние не меняется, повторные попытки не ограничены.
func (a *Attempt) SubmitPassword(password string) error {
	if a.state != StatePendingPassword {
		return &TransitionError{
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("ввод пароля недопустим в состоянии %s", a.state),
		}
	}

	if a.link.PasswordHash == nil || !a.verifier.Verify(*a.link.PasswordHash, password) {
		if err := a.transition(StatePendingPassword); err != nil {
			return err
		}
		return ErrPasswordMismatch
	}

	return a.transition(StateAuthorized)
}

// FailData переводит авторизованную попытку в data_error.
func (a *Attempt) FailData() error {
	return a.transition(StateDataError)
}

// transition выполняет переход с проверкой матрицы.
func (a *Attempt) transition(target State) error {
	if !validTransitions[a.state][target] {
		return &TransitionError{
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("переход %s → %s недопустим", a.state, target),
		}
	}
	a.state = target
	a.history = append(a.history, target)
	return nil
}

// Resolvable — предикат разрешимости ссылки в момент now.
// password == nil означает, что пароль не предъявлен.
func Resolvable(link *model.ShareLink, now time.Time, password *string, verifier PasswordVerifier) bool {
	a := NewAttempt(now, verifier)
	state, err := a.Load(link)
	if err != nil {
		return false
	}
	switch state {
	case StateAuthorized:
		return true
	case StatePendingPassword:
		if password == nil {
			return false
		}
		return a.SubmitPassword(*password) == nil
	default:
		return false
	}
}

// TransitionError — ошибка недопустимого перехода.
type TransitionError struct {
	Code    string // Машиночитаемый код (INVALID_TRANSITION)
	Message string // Человекочитаемое описание
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
