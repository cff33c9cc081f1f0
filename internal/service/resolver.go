// resolver.go — разрешение ссылки доступа анонимным зрителем.
// Каждый запрос заново проверяет активность, срок действия и пароль;
// сессий зрителя нет.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/access"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/visibility"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/ratelimit"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/repository"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sm_link_resolutions_total",
		Help: "Количество попыток разрешения ссылок (по итоговому состоянию).",
	}, []string{"result"})

	resolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sm_link_resolve_duration_seconds",
		Help:    "Длительность разрешения ссылки с загрузкой данных проекта.",
		Buckets: prometheus.DefBuckets,
	})

	viewCountErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sm_view_count_errors_total",
		Help: "Количество неудачных увеличений счётчика просмотров.",
	})
)

// ResolvedShare — результат успешного разрешения ссылки.
// Незарасшаренные категории в Data пусты и неотличимы от отсутствия данных.
type ResolvedShare struct {
	Link     *model.ShareLink
	Project  *model.Project
	Data     model.ProjectData
	Included []visibility.Category
	// Errors — категории, которые не удалось загрузить
	Errors []CategoryError
	// States — пройденные состояния попытки
	States []access.State
}

// ResolverService разрешает ссылки доступа.
type ResolverService struct {
	links    repository.ShareLinkRepository
	projects repository.ProjectRepository
	loader   *ProjectDataLoader
	verifier access.PasswordVerifier
	limiter  ratelimit.Limiter
	now      func() time.Time
	logger   *slog.Logger
}

// NewResolverService создаёт сервис разрешения ссылок.
// limiter может быть nil — попытки ввода пароля не ограничиваются.
func NewResolverService(
	links repository.ShareLinkRepository,
	projects repository.ProjectRepository,
	loader *ProjectDataLoader,
	verifier access.PasswordVerifier,
	limiter ratelimit.Limiter,
	logger *slog.Logger,
) *ResolverService {
	return &ResolverService{
		links:    links,
		projects: projects,
		loader:   loader,
		verifier: verifier,
		limiter:  limiter,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "resolver")),
	}
}

// Authorize проводит попытку через конечный автомат до authorized.
// password == nil — пароль не предъявлен.
func (s *ResolverService) Authorize(ctx context.Context, id string, password *string) (*access.Attempt, error) {
	if password != nil && s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, id)
		if err != nil {
			// Недоступный лимитер не блокирует зрителей
			s.logger.Warn("Ошибка лимитера попыток", slog.String("error", err.Error()))
		} else if !allowed {
			resolutionsTotal.WithLabelValues("rate_limited").Inc()
			return nil, ErrTooManyAttempts
		}
	}

	link, err := s.links.GetByID(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		resolutionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("получение ссылки: %w", err)
	}

	attempt := access.NewAttempt(s.now(), s.verifier)
	state, err := attempt.Load(link)
	if err != nil {
		return nil, err
	}

	switch state {
	case access.StateNotFound:
		resolutionsTotal.WithLabelValues(string(access.StateNotFound)).Inc()
		return attempt, ErrNotFound
	case access.StateExpired:
		resolutionsTotal.WithLabelValues(string(access.StateExpired)).Inc()
		return attempt, ErrExpired
	case access.StatePendingPassword:
		if password == nil {
			resolutionsTotal.WithLabelValues("password_required").Inc()
			return attempt, ErrPasswordRequired
		}
		if err := attempt.SubmitPassword(*password); err != nil {
			if errors.Is(err, access.ErrPasswordMismatch) {
				resolutionsTotal.WithLabelValues("invalid_password").Inc()
				return attempt, ErrInvalidPassword
			}
			return attempt, err
		}
	}
	return attempt, nil
}

// Resolve разрешает ссылку и загружает расшаренные категории проекта.
// Ошибки отдельных категорий возвращаются в ResolvedShare.Errors.
// Счётчик просмотров увеличивается best-effort.
func (s *ResolverService) Resolve(ctx context.Context, id string, password *string) (*ResolvedShare, error) {
	start := time.Now()
	defer func() { resolveDuration.Observe(time.Since(start).Seconds()) }()

	attempt, err := s.Authorize(ctx, id, password)
	if err != nil {
		return nil, err
	}
	link := attempt.Link()

	included := visibility.Included(link.ShareOptions)

	// Карточка проекта читается вместе с категориями и так же независимо от них.
	var (
		project    *model.Project
		projectErr error
		data       model.ProjectData
		notices    []CategoryError
		g          errgroup.Group
	)
	g.Go(func() error {
		project, projectErr = s.projects.GetByID(ctx, link.ProjectID)
		return nil
	})
	g.Go(func() error {
		data, notices = s.loader.Load(ctx, link.ProjectID, included)
		return nil
	})
	_ = g.Wait()

	switch {
	case errors.Is(projectErr, repository.ErrNotFound):
		_ = attempt.FailData()
		resolutionsTotal.WithLabelValues(string(access.StateDataError)).Inc()
		return nil, ErrNotFound
	case projectErr != nil:
		s.logger.Warn("Ошибка загрузки карточки проекта",
			slog.String("project_id", link.ProjectID),
			slog.String("error", projectErr.Error()),
		)
		categoryLoadErrorsTotal.WithLabelValues(string(CategoryProject)).Inc()
		// Зритель получает загруженные категории и уведомление вместо карточки
		project = &model.Project{ID: link.ProjectID}
		notices = append([]CategoryError{{Category: CategoryProject, Message: projectLoadErrorMessage}}, notices...)
	}

	data = visibility.Filter(link.ShareOptions, data)

	if err := s.links.IncrementViewCount(ctx, link.ID); err != nil {
		viewCountErrorsTotal.Inc()
		s.logger.Warn("Не удалось увеличить счётчик просмотров",
			slog.String("project_id", link.ProjectID),
			slog.String("error", err.Error()),
		)
	}

	resolutionsTotal.WithLabelValues(string(access.StateAuthorized)).Inc()
	if included == nil {
		included = []visibility.Category{}
	}
	return &ResolvedShare{
		Link:     link,
		Project:  project,
		Data:     data,
		Included: included,
		Errors:   notices,
		States:   attempt.History(),
	}, nil
}
