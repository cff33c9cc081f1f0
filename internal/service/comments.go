// comments.go — добавление комментариев зрителями ссылки.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/repository"
)

// AnonymousAuthor — имя автора, если зритель его не указал.
const AnonymousAuthor = "Anonymous"

var commentsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sm_comments_added_total",
	Help: "Количество добавленных комментариев.",
})

// CommentService — журнал комментариев ссылки (только добавление).
type CommentService struct {
	resolver *ResolverService
	links    repository.ShareLinkRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewCommentService создаёт сервис комментариев.
func NewCommentService(resolver *ResolverService, links repository.ShareLinkRepository, logger *slog.Logger) *CommentService {
	return &CommentService{
		resolver: resolver,
		links:    links,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "comment_service")),
	}
}

// Add добавляет комментарий к ссылке.
// Требует того же доступа, что и просмотр: активная, неистёкшая ссылка
// и верный пароль для приватной.
func (s *CommentService) Add(ctx context.Context, id string, password *string, author, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment: обязательное поле", ErrValidation)
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = AnonymousAuthor
	}

	attempt, err := s.resolver.Authorize(ctx, id, password)
	if err != nil {
		return nil, err
	}
	if !attempt.Link().ShareOptions.AllowComments {
		return nil, ErrCommentsDisabled
	}

	comment := model.Comment{
		ID:         uuid.New().String(),
		AuthorName: author,
		Comment:    text,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.links.AppendComment(ctx, id, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("сохранение комментария: %w", err)
	}

	commentsAddedTotal.Inc()
	s.logger.Info("Комментарий добавлен",
		slog.String("project_id", attempt.Link().ProjectID),
		slog.String("comment_id", comment.ID),
	)
	return &comment, nil
}
