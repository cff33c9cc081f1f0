// sharelink.go — сервис ссылок доступа для владельца проекта:
// создание, список, просмотр, включение/отключение, отзыв, комментарии.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/repository"
)

// linkIDBytes — длина идентификатора ссылки в байтах (256 бит).
const linkIDBytes = 32

var linksCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sm_share_links_created_total",
	Help: "Количество созданных ссылок доступа (по типу).",
}, []string{"share_type"})

// ExpiryInput — срок действия ссылки: amount единиц unit.
type ExpiryInput struct {
	// Верхняя граница — год в минутах; для часов срок проверяется в Create
	Amount int              `validate:"gt=0,lte=525600"`
	Unit   model.ExpiryUnit `validate:"required,oneof=minutes hours"`
}

// CreateShareLinkInput — параметры создания ссылки.
type CreateShareLinkInput struct {
	ProjectID string          `validate:"required,uuid"`
	ShareType model.ShareType `validate:"required,oneof=public private"`
	// Password обязателен для private, для public игнорируется
	Password string `validate:"required_if=ShareType private,max=72"`
	// Expiry — nil означает срок по умолчанию
	Expiry  *ExpiryInput `validate:"omitempty"`
	Options model.ShareOptions
}

// CreatedShareLink — созданная ссылка и её публичный URL.
type CreatedShareLink struct {
	Link *model.ShareLink
	URL  string
}

// ShareLinkService — управление ссылками доступа владельцем проекта.
type ShareLinkService struct {
	links         repository.ShareLinkRepository
	projects      repository.ProjectRepository
	hasher        *PasswordHasher
	validate      *validator.Validate
	publicBaseURL string
	defaultExpiry time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewShareLinkService создаёт сервис ссылок доступа.
// publicBaseURL — origin фронтенда без завершающего слэша.
func NewShareLinkService(
	links repository.ShareLinkRepository,
	projects repository.ProjectRepository,
	hasher *PasswordHasher,
	publicBaseURL string,
	defaultExpiry time.Duration,
	logger *slog.Logger,
) *ShareLinkService {
	return &ShareLinkService{
		links:         links,
		projects:      projects,
		hasher:        hasher,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		publicBaseURL: publicBaseURL,
		defaultExpiry: defaultExpiry,
		now:           time.Now,
		logger:        logger.With(slog.String("component", "share_link_service")),
	}
}

// URL возвращает публичный адрес ссылки: {origin}/shared/{id}.
func (s *ShareLinkService) URL(id string) string {
	return s.publicBaseURL + "/shared/" + id
}

// Create создаёт новую ссылку доступа к проекту владельца.
// Повторная отправка создаёт ещё одну независимую ссылку; ошибки
// сохранения возвращаются вызывающему без повторов.
func (s *ShareLinkService) Create(ctx context.Context, owner string, in CreateShareLinkInput) (*CreatedShareLink, error) {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.ownedProject(ctx, owner, in.ProjectID); err != nil {
		return nil, err
	}

	lifetime := s.defaultExpiry
	if in.Expiry != nil {
		var ok bool
		if lifetime, ok = in.Expiry.Unit.Duration(in.Expiry.Amount); !ok {
			return nil, fmt.Errorf("%w: Amount: срок действия не больше %s", ErrValidation, model.MaxLinkLifetime)
		}
	}

	id, err := newLinkID()
	if err != nil {
		return nil, err
	}

	var passwordHash *string
	if in.ShareType == model.ShareTypePrivate {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	}

	opts := in.Options
	opts.AllowComments = true

	now := s.now().UTC()
	link := &model.ShareLink{
		ID:           id,
		ProjectID:    in.ProjectID,
		CreatedBy:    owner,
		ShareType:    in.ShareType,
		PasswordHash: passwordHash,
		ExpiresAt:    now.Add(lifetime),
		ShareOptions: opts,
		IsActive:     true,
		ViewCount:    0,
		Comments:     []model.Comment{},
		CreatedAt:    now,
	}

	if err := s.links.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("сохранение ссылки: %w", err)
	}

	linksCreatedTotal.WithLabelValues(string(link.ShareType)).Inc()
	s.logger.Info("Ссылка доступа создана",
		slog.String("project_id", link.ProjectID),
		slog.String("share_type", string(link.ShareType)),
		slog.Time("expires_at", link.ExpiresAt),
	)

	return &CreatedShareLink{Link: link, URL: s.URL(link.ID)}, nil
}

// List возвращает ссылки проекта, созданные владельцем.
func (s *ShareLinkService) List(ctx context.Context, owner, projectID string) ([]*model.ShareLink, error) {
	if _, err := s.ownedProject(ctx, owner, projectID); err != nil {
		return nil, err
	}
	links, err := s.links.ListByProject(ctx, projectID, owner)
	if err != nil {
		return nil, fmt.Errorf("получение списка ссылок: %w", err)
	}
	return links, nil
}

// Get возвращает ссылку владельца со счётчиком просмотров.
func (s *ShareLinkService) Get(ctx context.Context, owner, id string) (*model.ShareLink, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение ссылки: %w", err)
	}
	if link.CreatedBy != owner {
		return nil, ErrNotFound
	}
	return link, nil
}

// SetActive включает или отключает ссылку без удаления.
func (s *ShareLinkService) SetActive(ctx context.Context, owner, id string, active bool) (*model.ShareLink, error) {
	link, err := s.links.SetActive(ctx, id, owner, active)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("изменение ссылки: %w", err)
	}
	s.logger.Info("Состояние ссылки изменено",
		slog.String("project_id", link.ProjectID),
		slog.Bool("is_active", active),
	)
	return link, nil
}

// Revoke удаляет ссылку. Другие ссылки проекта продолжают работать.
func (s *ShareLinkService) Revoke(ctx context.Context, owner, id string) error {
	if err := s.links.Delete(ctx, id, owner); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление ссылки: %w", err)
	}
	s.logger.Info("Ссылка доступа отозвана")
	return nil
}

// Comments возвращает комментарии ссылки, новые первыми.
// Порядок хранения не гарантирован, сортировка выполняется при каждом чтении.
func (s *ShareLinkService) Comments(ctx context.Context, owner, id string) ([]model.Comment, error) {
	link, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return SortCommentsNewestFirst(link.Comments), nil
}

// SortCommentsNewestFirst возвращает копию комментариев по убыванию created_at.
func SortCommentsNewestFirst(comments []model.Comment) []model.Comment {
	sorted := slices.Clone(comments)
	if sorted == nil {
		sorted = []model.Comment{}
	}
	slices.SortStableFunc(sorted, func(a, b model.Comment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}

// ownedProject возвращает проект, если он принадлежит владельцу; иначе ErrNotFound.
func (s *ShareLinkService) ownedProject(ctx context.Context, owner, projectID string) (*model.Project, error) {
	return ownedProject(ctx, s.projects, owner, projectID)
}

// ownedProject — общая проверка владения проектом.
func ownedProject(ctx context.Context, projects repository.ProjectRepository, owner, projectID string) (*model.Project, error) {
	project, err := projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение проекта: %w", err)
	}
	if project.CreatedBy != owner {
		return nil, ErrNotFound
	}
	return project, nil
}

// newLinkID генерирует непрозрачный URL-safe идентификатор ссылки.
func newLinkID() (string, error) {
	buf := make([]byte, linkIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("генерация идентификатора ссылки: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// validationError превращает ошибки validator в ErrValidation с описанием полей.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, describeField(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(parts, "; "))
}

// describeField формирует сообщение для одного поля.
func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + ": обязательное поле"
	case "required_if":
		return field + ": обязателен для приватной ссылки"
	case "oneof":
		return fmt.Sprintf("%s: допустимые значения — %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s: должно быть больше %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s: должно быть не больше %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: не длиннее %s символов", field, fe.Param())
	case "uuid":
		return field + ": ожидается UUID"
	default:
		return fmt.Sprintf("%s: нарушено правило %s", field, fe.Tag())
	}
}
