// Пакет model — доменные модели share-module.
// ShareLink — маппинг таблицы share_links (ссылки доступа к проекту).
package model

import "time"

// ShareType — тип ссылки доступа.
type ShareType string

const (
	// ShareTypePublic — доступ без пароля.
	ShareTypePublic ShareType = "public"
	// ShareTypePrivate — доступ только с паролем.
	ShareTypePrivate ShareType = "private"
)

// Valid проверяет, что тип ссылки допустим.
func (t ShareType) Valid() bool {
	return t == ShareTypePublic || t == ShareTypePrivate
}

// ExpiryUnit — единица измерения срока действия ссылки.
type ExpiryUnit string

const (
	ExpiryMinutes ExpiryUnit = "minutes"
	ExpiryHours   ExpiryUnit = "hours"
)

// MaxLinkLifetime — наибольший допустимый срок действия ссылки.
const MaxLinkLifetime = 365 * 24 * time.Hour

// Duration переводит amount единиц в time.Duration.
// Для неизвестной единицы, amount <= 0 и срока больше MaxLinkLifetime
// возвращает false.
func (u ExpiryUnit) Duration(amount int) (time.Duration, bool) {
	var unit time.Duration
	switch u {
	case ExpiryMinutes:
		unit = time.Minute
	case ExpiryHours:
		unit = time.Hour
	default:
		return 0, false
	}
	if amount <= 0 || int64(amount) > int64(MaxLinkLifetime/unit) {
		return 0, false
	}
	return time.Duration(amount) * unit, true
}

// ShareOptions — набор флагов видимости категорий данных проекта.
// Хранится в share_links.share_options (JSONB), имена полей — контракт хранения.
type ShareOptions struct {
	PhaseDetails     bool `json:"phaseDetails"`
	ExpenseDetails   bool `json:"expenseDetails"`
	IncomeDetails    bool `json:"incomeDetails"`
	MaterialsDetails bool `json:"materialsDetails"`
	PhasePhotos      bool `json:"phasePhotos"`
	TeamMembers      bool `json:"teamMembers"`
	// AllowComments всегда true при создании ссылки.
	AllowComments bool `json:"allowComments"`
}

// Comment — комментарий зрителя, встроенный в запись ссылки.
// Неизменяем после создания.
type Comment struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"author_name"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// ShareLink — ссылка доступа к проекту.
type ShareLink struct {
	// ID — непрозрачный случайный идентификатор (capability token в URL)
	ID string
	// ProjectID — UUID проекта
	ProjectID string
	// CreatedBy — sub владельца из JWT
	CreatedBy string
	// ShareType — public или private
	ShareType ShareType
	// PasswordHash — bcrypt-хэш пароля, задан только для private
	PasswordHash *string
	// ExpiresAt — абсолютное время истечения
	ExpiresAt time.Time
	// ShareOptions — флаги видимости категорий
	ShareOptions ShareOptions
	// IsActive — soft-disable без удаления
	IsActive bool
	// ViewCount — счётчик успешных открытий (best-effort)
	ViewCount int64
	// Comments — комментарии в порядке хранения (не гарантирован)
	Comments []Comment
	// CreatedAt — время создания
	CreatedAt time.Time
}

// ExpiredAt сообщает, истекла ли ссылка к моменту now.
// Граница exclusive: в момент expires_at ссылка уже недействительна.
func (l *ShareLink) ExpiredAt(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
