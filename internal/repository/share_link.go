package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
)

// shareLinkColumns — список столбцов таблицы share_links для SELECT-запросов.
const shareLinkColumns = `id, project_id, created_by, share_type, password_hash,
	expires_at, share_options, is_active, view_count, comments, created_at`

// ShareLinkRepository — интерфейс доступа к ссылкам доступа.
type ShareLinkRepository interface {
	// Create сохраняет новую ссылку. ErrConflict при совпадении id.
	Create(ctx context.Context, link *model.ShareLink) error
	// GetByID возвращает ссылку по id или ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.ShareLink, error)
	// ListByProject возвращает ссылки проекта, созданные владельцем, новые первыми.
	ListByProject(ctx context.Context, projectID, createdBy string) ([]*model.ShareLink, error)
	// SetActive включает или отключает ссылку владельца.
	SetActive(ctx context.Context, id, createdBy string, active bool) (*model.ShareLink, error)
	// Delete удаляет ссылку владельца.
	Delete(ctx context.Context, id, createdBy string) error
	// IncrementViewCount увеличивает счётчик просмотров без блокировок.
	IncrementViewCount(ctx context.Context, id string) error
	// AppendComment атомарно добавляет комментарий в конец массива comments.
	AppendComment(ctx context.Context, id string, comment model.Comment) error
}

// shareLinkRepo — реализация ShareLinkRepository через pgx.
type shareLinkRepo struct {
	db DBTX
}

// NewShareLinkRepository создаёт репозиторий ссылок доступа.
func NewShareLinkRepository(db DBTX) ShareLinkRepository {
	return &shareLinkRepo{db: db}
}

// Create сохраняет новую ссылку.
func (r *shareLinkRepo) Create(ctx context.Context, link *model.ShareLink) error {
	opts, err := json.Marshal(link.ShareOptions)
	if err != nil {
		return fmt.Errorf("сериализация share_options: %w", err)
	}
	comments := link.Comments
	if comments == nil {
		comments = []model.Comment{}
	}
	commentsJSON, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("сериализация comments: %w", err)
	}

	query := `
		INSERT INTO share_links (id, project_id, created_by, share_type, password_hash,
			expires_at, share_options, is_active, view_count, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		link.ID, link.ProjectID, link.CreatedBy, string(link.ShareType), link.PasswordHash,
		link.ExpiresAt, opts, link.IsActive, link.ViewCount, commentsJSON, link.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания ссылки: %w", err)
	}
	return nil
}

// GetByID возвращает ссылку по id или ErrNotFound.
func (r *shareLinkRepo) GetByID(ctx context.Context, id string) (*model.ShareLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM share_links WHERE id = $1`, shareLinkColumns)

	link, err := scanShareLink(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения ссылки: %w", err)
	}
	return link, nil
}

// ListByProject возвращает ссылки проекта, созданные владельцем.
func (r *shareLinkRepo) ListByProject(ctx context.Context, projectID, createdBy string) ([]*model.ShareLink, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM share_links
		WHERE project_id = $1 AND created_by = $2
		ORDER BY created_at DESC`, shareLinkColumns)

	rows, err := r.db.Query(ctx, query, projectID, createdBy)
	if err != nil {
		if isInvalidText(err) {
			return []*model.ShareLink{}, nil
		}
		return nil, fmt.Errorf("ошибка получения списка ссылок: %w", err)
	}
	defer rows.Close()

	result := []*model.ShareLink{}
	for rows.Next() {
		link, err := scanShareLink(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования ссылки: %w", err)
		}
		result = append(result, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации ссылок: %w", err)
	}
	return result, nil
}

// SetActive включает или отключает ссылку владельца.
func (r *shareLinkRepo) SetActive(ctx context.Context, id, createdBy string, active bool) (*model.ShareLink, error) {
	query := fmt.Sprintf(`
		UPDATE share_links SET is_active = $3
		WHERE id = $1 AND created_by = $2
		RETURNING %s`, shareLinkColumns)

	link, err := scanShareLink(r.db.QueryRow(ctx, query, id, createdBy, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления ссылки: %w", err)
	}
	return link, nil
}

// Delete удаляет ссылку владельца. Другие ссылки проекта не затрагиваются.
func (r *shareLinkRepo) Delete(ctx context.Context, id, createdBy string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM share_links WHERE id = $1 AND created_by = $2`, id, createdBy)
	if err != nil {
		return fmt.Errorf("ошибка удаления ссылки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViewCount увеличивает view_count на 1.
// Конкурентные просмотры не синхронизируются.
func (r *shareLinkRepo) IncrementViewCount(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE share_links SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления счётчика просмотров: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendComment добавляет комментарий в конец JSONB-массива одним UPDATE,
// существующие элементы не переписываются.
func (r *shareLinkRepo) AppendComment(ctx context.Context, id string, comment model.Comment) error {
	data, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("сериализация комментария: %w", err)
	}

	query := `
		UPDATE share_links
		SET comments = comments || jsonb_build_array($2::jsonb)
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, string(data))
	if err != nil {
		return fmt.Errorf("ошибка добавления комментария: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanShareLink сканирует строку share_links (pgx.Row и pgx.Rows).
func scanShareLink(row pgx.Row) (*model.ShareLink, error) {
	var (
		link         model.ShareLink
		shareType    string
		optsJSON     []byte
		commentsJSON []byte
	)
	if err := row.Scan(
		&link.ID, &link.ProjectID, &link.CreatedBy, &shareType, &link.PasswordHash,
		&link.ExpiresAt, &optsJSON, &link.IsActive, &link.ViewCount, &commentsJSON, &link.CreatedAt,
	); err != nil {
		return nil, err
	}
	link.ShareType = model.ShareType(shareType)

	if err := json.Unmarshal(optsJSON, &link.ShareOptions); err != nil {
		return nil, fmt.Errorf("разбор share_options: %w", err)
	}
	link.Comments = []model.Comment{}
	if len(commentsJSON) > 0 {
		if err := json.Unmarshal(commentsJSON, &link.Comments); err != nil {
			return nil, fmt.Errorf("разбор comments: %w", err)
		}
	}
	return &link, nil
}
