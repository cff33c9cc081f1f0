// project.go — модели данных проекта (projects, phases, transactions,
// materials, phase_photos, team_members). Для share-module только чтение.
package model

import "time"

// TransactionType — дискриминатор таблицы transactions.
type TransactionType string

const (
	TransactionExpense TransactionType = "expense"
	TransactionIncome  TransactionType = "income"
)

// Метки фаз для записей без фазы или со ссылкой на несуществующую фазу.
const (
	NoPhaseLabel      = "No Phase"
	UnknownPhaseLabel = "Unknown Phase"
)

// Project — проект (заголовочные данные видны всегда).
type Project struct {
	ID          string
	Name        string
	Description *string
	Status      string
	Location    *string
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedBy   string
	CreatedAt   time.Time
}

// Phase — этап проекта.
type Phase struct {
	ID             string
	ProjectID      string
	Name           string
	Status         string
	StartDate      *time.Time
	EndDate        *time.Time
	EstimatedCost  *float64
	ContractorName *string
	CreatedAt      time.Time
}

// Transaction — расход или доход проекта.
// Итоговая сумма записи: Amount + GSTAmount.
type Transaction struct {
	ID            string
	ProjectID     string
	PhaseID       *string
	Type          TransactionType
	Category      *string
	Amount        float64
	GSTAmount     float64
	PaymentMethod *string
	BillReference *string
	Description   *string
	Date          time.Time
	CreatedAt     time.Time
	// PhaseName — вычисляется после загрузки фаз, никогда не пустая
	PhaseName string
}

// Total возвращает сумму с учётом GST.
func (t *Transaction) Total() float64 {
	return t.Amount + t.GSTAmount
}

// Material — материал проекта.
type Material struct {
	ID          string
	ProjectID   string
	Name        string
	Unit        *string
	UnitCost    float64
	QtyRequired float64
	Status      string
	UpdatedAt   time.Time
}

// PhasePhoto — фотография этапа (изображение по публичному URL).
type PhasePhoto struct {
	ID          string
	ProjectID   string
	PhaseID     *string
	PhotoURL    string
	Description *string
	UploadedAt  time.Time
	// PhaseName — вычисляется после загрузки фаз, никогда не пустая
	PhaseName string
}

// TeamMember — участник команды проекта.
type TeamMember struct {
	ID        string
	ProjectID string
	Name      string
	Email     *string
	Role      *string
	Status    string
	Active    bool
}

// ProjectData — шесть категорий данных проекта.
type ProjectData struct {
	Phases      []*Phase
	Expenses    []*Transaction
	Income      []*Transaction
	Materials   []*Material
	PhasePhotos []*PhasePhoto
	TeamMembers []*TeamMember
}
