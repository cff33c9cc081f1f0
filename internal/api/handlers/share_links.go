// share_links.go — обработчики /api/v1 endpoints владельца проекта:
// создание, список, просмотр, включение/отключение, отзыв ссылок и комментарии.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/Mathew1304/Expense-Tracker-sub000/internal/api/errors"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/api/middleware"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/service"
)

// createShareLinkRequest — тело POST /api/v1/projects/{projectId}/share-links.
type createShareLinkRequest struct {
	ShareType string `json:"share_type"`
	Password  string `json:"password"`
	Expiry    *struct {
		Amount int    `json:"amount"`
		Unit   string `json:"unit"`
	} `json:"expiry"`
	ShareOptions model.ShareOptions `json:"share_options"`
}

// updateShareLinkRequest — тело PATCH /api/v1/share-links/{shareId}.
type updateShareLinkRequest struct {
	IsActive *bool `json:"is_active"`
}

// shareLinkResponse — ссылка в ответах владельцу.
type shareLinkResponse struct {
	ID           string             `json:"id"`
	ProjectID    string             `json:"project_id"`
	ShareType    model.ShareType    `json:"share_type"`
	URL          string             `json:"url"`
	ExpiresAt    time.Time          `json:"expires_at"`
	Expired      bool               `json:"expired"`
	ShareOptions model.ShareOptions `json:"share_options"`
	IsActive     bool               `json:"is_active"`
	ViewCount    int64              `json:"view_count"`
	CommentCount int                `json:"comment_count"`
	CreatedAt    time.Time          `json:"created_at"`
}

// listResponse — обёртка списков.
type listResponse[T any] struct {
	Items []T `json:"items"`
}

// mapShareLink преобразует ссылку в ответ.
func (h *APIHandler) mapShareLink(link *model.ShareLink, url string) shareLinkResponse {
	return shareLinkResponse{
		ID:           link.ID,
		ProjectID:    link.ProjectID,
		ShareType:    link.ShareType,
		URL:          url,
		ExpiresAt:    link.ExpiresAt,
		Expired:      link.ExpiredAt(h.now()),
		ShareOptions: link.ShareOptions,
		IsActive:     link.IsActive,
		ViewCount:    link.ViewCount,
		CommentCount: len(link.Comments),
		CreatedAt:    link.CreatedAt,
	}
}

// owner возвращает sub владельца из контекста. При отсутствии пишет 401.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	sub := middleware.SubjectFromContext(r.Context())
	if sub == "" {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return "", false
	}
	return sub, true
}

// CreateShareLink — POST /api/v1/projects/{projectId}/share-links.
func (h *APIHandler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	sub, ok := owner(w, r)
	if !ok {
		return
	}

	var req createShareLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := service.CreateShareLinkInput{
		ProjectID: chi.URLParam(r, "projectId"),
		ShareType: model.ShareType(req.ShareType),
		Password:  req.Password,
		Options:   req.ShareOptions,
	}
	if req.Expiry != nil {
		in.Expiry = &service.ExpiryInput{
			Amount: req.Expiry.Amount,
			Unit:   model.ExpiryUnit(req.Expiry.Unit),
		}
	}

	created, err := h.links.Create(r.Context(), sub, in)
	if err != nil {
		h.writeServiceError(w, err, "создание ссылки")
		return
	}

	writeJSON(w, http.StatusCreated, h.mapShareLink(created.Link, created.URL))
}

// ListShareLinks — GET /api/v1/projects/{projectId}/share-links.
func (h *APIHandler) ListShareLinks(w http.ResponseWriter, r *http.Request) {
	sub, ok := owner(w, r)
	if !ok {
		return
	}

	links, err := h.links.List(r.Context(), sub, chi.URLParam(r, "projectId"))
	if err != nil {
		h.writeServiceError(w, err, "получение списка ссылок")
		return
	}

	items := make([]shareLinkResponse, len(links))
	for i, link := range links {
		items[i] = h.mapShareLink(link, h.links.URL(link.ID))
	}
	writeJSON(w, http.StatusOK, listResponse[shareLinkResponse]{Items: items})
}

// GetShareLink — GET /api/v1/share-links/{shareId}.
func (h *APIHandler) GetShareLink(w http.ResponseWriter, r *http.Request) {
	sub, ok := owner(w, r)
	if !ok {
		return
	}

	link, err := h.links.Get(r.Context(), sub, chi.URLParam(r, "shareId"))
	if err != nil {
		h.writeServiceError(w, err, "получение ссылки")
		return
	}

	writeJSON(w, http.StatusOK, h.mapShareLink(link, h.links.URL(link.ID)))
}

// UpdateShareLink — PATCH /api/v1/share-links/{shareId}.
// Меняет только is_active.
func (h *APIHandler) UpdateShareLink(w http.ResponseWriter, r *http.Request) {
	sub, ok := owner(w, r)
	if !ok {
		return
	}

	var req updateShareLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		apierrors.ValidationError(w, "is_active: обязательное поле")
		return
	}

	link, err := h.links.SetActive(r.Context(), sub, chi.URLParam(r, "shareId"), *req.IsActive)
	if err != nil {
		h.writeServiceError(w, err, "изменение ссылки")
		return
	}

	writeJSON(w, http.StatusOK, h.mapShareLink(link, h.links.URL(link.ID)))
}

// RevokeShareLink — DELETE /api/v1/share-links/{shareId}.
func (h *APIHandler) RevokeShareLink(w http.ResponseWriter, r *http.Request) {
	sub, ok := owner(w, r)
	if !ok {
		return
	}

	if err := h.links.Revoke(r.Context(), sub, chi.URLParam(r, "shareId")); err != nil {
		h.writeServiceError(w, err, "удаление ссылки")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListShareLinkComments — GET /api/v1/share-links/{shareId}/comments.
// Комментарии возвращаются новыми первыми.
func (h *APIHandler) ListShareLinkComments(w http.ResponseWriter, r *http.Request) {
	sub, ok := owner(w, r)
	if !ok {
		return
	}

	comments, err := h.links.Comments(r.Context(), sub, chi.URLParam(r, "shareId"))
	if err != nil {
		h.writeServiceError(w, err, "получение комментариев")
		return
	}

	writeJSON(w, http.StatusOK, listResponse[model.Comment]{Items: comments})
}
