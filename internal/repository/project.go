package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
)

// Списки столбцов таблиц проекта для SELECT-запросов.
const (
	projectColumns = `id, name, description, status, location, start_date, end_date,
	created_by, created_at`
	phaseColumns = `id, project_id, name, status, start_date, end_date, estimated_cost,
	contractor_name, created_at`
	transactionColumns = `id, project_id, phase_id, type, category, amount, gst_amount,
	payment_method, bill_reference, description, date, created_at`
	materialColumns = `id, project_id, name, unit, unit_cost, qty_required, status, updated_at`
	photoColumns    = `id, project_id, phase_id, photo_url, description, uploaded_at`
	memberColumns   = `id, project_id, name, email, role, status, active`
)

// ProjectRepository — read-only доступ к данным проекта.
type ProjectRepository interface {
	// GetByID возвращает проект или ErrNotFound.
	GetByID(ctx context.Context, projectID string) (*model.Project, error)
	// ListPhases возвращает этапы проекта в порядке дат начала.
	ListPhases(ctx context.Context, projectID string) ([]*model.Phase, error)
	// ListTransactions возвращает расходы или доходы проекта (по дискриминатору type).
	ListTransactions(ctx context.Context, projectID string, txType model.TransactionType) ([]*model.Transaction, error)
	// ListMaterials возвращает материалы проекта.
	ListMaterials(ctx context.Context, projectID string) ([]*model.Material, error)
	// ListPhasePhotos возвращает фотографии этапов проекта.
	ListPhasePhotos(ctx context.Context, projectID string) ([]*model.PhasePhoto, error)
	// ListTeamMembers возвращает участников команды проекта.
	ListTeamMembers(ctx context.Context, projectID string) ([]*model.TeamMember, error)
}

// projectRepo — реализация ProjectRepository через pgx.
type projectRepo struct {
	db DBTX
}

// NewProjectRepository создаёт репозиторий данных проекта.
func NewProjectRepository(db DBTX) ProjectRepository {
	return &projectRepo{db: db}
}

// GetByID возвращает проект по UUID или ErrNotFound.
// Невалидный UUID тоже даёт ErrNotFound.
func (r *projectRepo) GetByID(ctx context.Context, projectID string) (*model.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)

	p := &model.Project{}
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.Location, &p.StartDate, &p.EndDate,
		&p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения проекта: %w", err)
	}
	return p, nil
}

// ListPhases возвращает этапы проекта.
func (r *projectRepo) ListPhases(ctx context.Context, projectID string) ([]*model.Phase, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM phases WHERE project_id = $1
		ORDER BY start_date NULLS LAST, created_at`, phaseColumns)

	return queryAll(ctx, r.db, query, []any{projectID}, "этапов", func(row pgx.Rows) (*model.Phase, error) {
		ph := &model.Phase{}
		err := row.Scan(
			&ph.ID, &ph.ProjectID, &ph.Name, &ph.Status, &ph.StartDate, &ph.EndDate,
			&ph.EstimatedCost, &ph.ContractorName, &ph.CreatedAt,
		)
		return ph, err
	})
}

// ListTransactions возвращает записи transactions указанного типа.
func (r *projectRepo) ListTransactions(ctx context.Context, projectID string, txType model.TransactionType) ([]*model.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM transactions WHERE project_id = $1 AND type = $2
		ORDER BY date DESC, created_at DESC`, transactionColumns)

	return queryAll(ctx, r.db, query, []any{projectID, string(txType)}, "транзакций", func(row pgx.Rows) (*model.Transaction, error) {
		tx := &model.Transaction{}
		var t string
		err := row.Scan(
			&tx.ID, &tx.ProjectID, &tx.PhaseID, &t, &tx.Category, &tx.Amount, &tx.GSTAmount,
			&tx.PaymentMethod, &tx.BillReference, &tx.Description, &tx.Date, &tx.CreatedAt,
		)
		tx.Type = model.TransactionType(t)
		return tx, err
	})
}

// ListMaterials возвращает материалы проекта.
func (r *projectRepo) ListMaterials(ctx context.Context, projectID string) ([]*model.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE project_id = $1 ORDER BY name`, materialColumns)

	return queryAll(ctx, r.db, query, []any{projectID}, "материалов", func(row pgx.Rows) (*model.Material, error) {
		m := &model.Material{}
		err := row.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Unit, &m.UnitCost, &m.QtyRequired, &m.Status, &m.UpdatedAt)
		return m, err
	})
}

// ListPhasePhotos возвращает фотографии этапов проекта.
func (r *projectRepo) ListPhasePhotos(ctx context.Context, projectID string) ([]*model.PhasePhoto, error) {
	query := fmt.Sprintf(`SELECT %s FROM phase_photos WHERE project_id = $1 ORDER BY uploaded_at`, photoColumns)

	return queryAll(ctx, r.db, query, []any{projectID}, "фотографий", func(row pgx.Rows) (*model.PhasePhoto, error) {
		p := &model.PhasePhoto{}
		err := row.Scan(&p.ID, &p.ProjectID, &p.PhaseID, &p.PhotoURL, &p.Description, &p.UploadedAt)
		return p, err
	})
}

// ListTeamMembers возвращает участников команды проекта.
func (r *projectRepo) ListTeamMembers(ctx context.Context, projectID string) ([]*model.TeamMember, error) {
	query := fmt.Sprintf(`SELECT %s FROM team_members WHERE project_id = $1 ORDER BY name`, memberColumns)

	return queryAll(ctx, r.db, query, []any{projectID}, "участников", func(row pgx.Rows) (*model.TeamMember, error) {
		m := &model.TeamMember{}
		err := row.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Email, &m.Role, &m.Status, &m.Active)
		return m, err
	})
}

// queryAll выполняет запрос и сканирует все строки через scan.
// what — название сущности для текста ошибки.
func queryAll[T any](ctx context.Context, db DBTX, query string, args []any, what string, scan func(pgx.Rows) (*T, error)) ([]*T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения %s: %w", what, err)
	}
	defer rows.Close()

	result := []*T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования %s: %w", what, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации %s: %w", what, err)
	}
	return result, nil
}
