// handler.go — основной обработчик HTTP API share-module.
// Объединяет обработчики владельца и публичного доступа и делегирует
// запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/Mathew1304/Expense-Tracker-sub000/internal/api/errors"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/service"
)

// ShareLinkManager — операции владельца над ссылками доступа.
type ShareLinkManager interface {
	Create(ctx context.Context, owner string, in service.CreateShareLinkInput) (*service.CreatedShareLink, error)
	List(ctx context.Context, owner, projectID string) ([]*model.ShareLink, error)
	Get(ctx context.Context, owner, id string) (*model.ShareLink, error)
	SetActive(ctx context.Context, owner, id string, active bool) (*model.ShareLink, error)
	Revoke(ctx context.Context, owner, id string) error
	Comments(ctx context.Context, owner, id string) ([]model.Comment, error)
	URL(id string) string
}

// ShareResolver — разрешение ссылки зрителем.
type ShareResolver interface {
	Resolve(ctx context.Context, id string, password *string) (*service.ResolvedShare, error)
}

// CommentAdder — добавление комментария зрителем.
type CommentAdder interface {
	Add(ctx context.Context, id string, password *string, author, text string) (*model.Comment, error)
}

// ReportGenerator — генерация PDF-отчёта владельцем.
type ReportGenerator interface {
	Generate(ctx context.Context, owner, projectID string) (*service.ReportOutput, error)
}

// APIHandler — основной обработчик API share-module.
type APIHandler struct {
	health   *HealthHandler
	links    ShareLinkManager
	resolver ShareResolver
	comments CommentAdder
	reports  ReportGenerator
	now      func() time.Time
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	links ShareLinkManager,
	resolver ShareResolver,
	comments CommentAdder,
	reports ReportGenerator,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:   health,
		links:    links,
		resolver: resolver,
		comments: comments,
		reports:  reports,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON разбирает тело запроса. При ошибке пишет 400 и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return false
	}
	return true
}

// writeServiceError отображает ошибку сервисного слоя в HTTP-ответ.
// op — описание операции для лога и сообщения 500.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "Ресурс не найден")
	case errors.Is(err, service.ErrExpired):
		apierrors.LinkExpired(w, "Срок действия ссылки истёк")
	case errors.Is(err, service.ErrPasswordRequired):
		apierrors.PasswordRequired(w, "Для просмотра требуется пароль")
	case errors.Is(err, service.ErrInvalidPassword):
		apierrors.InvalidPassword(w, "Неверный пароль")
	case errors.Is(err, service.ErrTooManyAttempts):
		apierrors.TooManyAttempts(w, "Слишком много попыток ввода пароля, повторите позже")
	case errors.Is(err, service.ErrCommentsDisabled):
		apierrors.Forbidden(w, "Комментарии для этой ссылки отключены")
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Ошибка: "+op)
	}
}
