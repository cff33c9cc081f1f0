// shared.go — публичные обработчики /shared/{shareId}: просмотр проекта
// по ссылке и добавление комментария. Аутентифицируется ссылка, а не зритель.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/visibility"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/service"
)

// SharePasswordHeader — заголовок с паролем приватной ссылки.
const SharePasswordHeader = "X-Share-Password"

// addCommentRequest — тело POST /shared/{shareId}/comments.
type addCommentRequest struct {
	AuthorName string `json:"author_name"`
	Comment    string `json:"comment"`
}

// --- Ответ просмотра ---

type sharedProjectResponse struct {
	Project  projectResponse         `json:"project"`
	Share    sharedLinkResponse      `json:"share"`
	Data     sharedDataResponse      `json:"data"`
	Included []visibility.Category   `json:"included"`
	Errors   []service.CategoryError `json:"errors"`
}

type projectResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Location    *string    `json:"location"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type sharedLinkResponse struct {
	ShareType     model.ShareType `json:"share_type"`
	ExpiresAt     time.Time       `json:"expires_at"`
	AllowComments bool            `json:"allow_comments"`
}

type sharedDataResponse struct {
	Phases      []phaseResponse       `json:"phases"`
	Expenses    []transactionResponse `json:"expenses"`
	Income      []transactionResponse `json:"income"`
	Materials   []materialResponse    `json:"materials"`
	PhasePhotos []photoResponse       `json:"phase_photos"`
	TeamMembers []teamMemberResponse  `json:"team_members"`
}

type phaseResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	EstimatedCost  *float64   `json:"estimated_cost"`
	ContractorName *string    `json:"contractor_name"`
}

type transactionResponse struct {
	ID            string    `json:"id"`
	PhaseID       *string   `json:"phase_id"`
	PhaseName     string    `json:"phase_name"`
	Category      *string   `json:"category"`
	Amount        float64   `json:"amount"`
	GSTAmount     float64   `json:"gst_amount"`
	Total         float64   `json:"total"`
	PaymentMethod *string   `json:"payment_method"`
	BillReference *string   `json:"bill_reference"`
	Description   *string   `json:"description"`
	Date          time.Time `json:"date"`
}

type materialResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Unit        *string `json:"unit"`
	UnitCost    float64 `json:"unit_cost"`
	QtyRequired float64 `json:"qty_required"`
	Status      string  `json:"status"`
}

type photoResponse struct {
	ID          string    `json:"id"`
	PhaseID     *string   `json:"phase_id"`
	PhaseName   string    `json:"phase_name"`
	PhotoURL    string    `json:"photo_url"`
	Description *string   `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type teamMemberResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Status string  `json:"status"`
	Active bool    `json:"active"`
}

// sharePassword возвращает пароль из заголовка; nil, если заголовок не передан.
func sharePassword(r *http.Request) *string {
	values, ok := r.Header[http.CanonicalHeaderKey(SharePasswordHeader)]
	if !ok || len(values) == 0 {
		return nil
	}
	password := values[0]
	return &password
}

// ResolveShare — GET /shared/{shareId}.
func (h *APIHandler) ResolveShare(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.resolver.Resolve(r.Context(), chi.URLParam(r, "shareId"), sharePassword(r))
	if err != nil {
		h.writeServiceError(w, err, "открытие ссылки")
		return
	}

	writeJSON(w, http.StatusOK, mapResolved(resolved))
}

// AddSharedComment — POST /shared/{shareId}/comments.
func (h *APIHandler) AddSharedComment(w http.ResponseWriter, r *http.Request) {
	var req addCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.comments.Add(r.Context(), chi.URLParam(r, "shareId"), sharePassword(r), req.AuthorName, req.Comment)
	if err != nil {
		h.writeServiceError(w, err, "добавление комментария")
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// mapResolved преобразует результат разрешения ссылки в ответ.
func mapResolved(res *service.ResolvedShare) sharedProjectResponse {
	p := res.Project
	errs := res.Errors
	if errs == nil {
		errs = []service.CategoryError{}
	}

	return sharedProjectResponse{
		Project: projectResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Status:      p.Status,
			Location:    p.Location,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
		},
		Share: sharedLinkResponse{
			ShareType:     res.Link.ShareType,
			ExpiresAt:     res.Link.ExpiresAt,
			AllowComments: res.Link.ShareOptions.AllowComments,
		},
		Data:     mapData(res.Data),
		Included: res.Included,
		Errors:   errs,
	}
}

func mapData(data model.ProjectData) sharedDataResponse {
	out := sharedDataResponse{
		Phases:      make([]phaseResponse, 0, len(data.Phases)),
		Expenses:    mapTransactions(data.Expenses),
		Income:      mapTransactions(data.Income),
		Materials:   make([]materialResponse, 0, len(data.Materials)),
		PhasePhotos: make([]photoResponse, 0, len(data.PhasePhotos)),
		TeamMembers: make([]teamMemberResponse, 0, len(data.TeamMembers)),
	}
	for _, ph := range data.Phases {
		out.Phases = append(out.Phases, phaseResponse{
			ID:             ph.ID,
			Name:           ph.Name,
			Status:         ph.Status,
			StartDate:      ph.StartDate,
			EndDate:        ph.EndDate,
			EstimatedCost:  ph.EstimatedCost,
			ContractorName: ph.ContractorName,
		})
	}
	for _, m := range data.Materials {
		out.Materials = append(out.Materials, materialResponse{
			ID:          m.ID,
			Name:        m.Name,
			Unit:        m.Unit,
			UnitCost:    m.UnitCost,
			QtyRequired: m.QtyRequired,
			Status:      m.Status,
		})
	}
	for _, ph := range data.PhasePhotos {
		out.PhasePhotos = append(out.PhasePhotos, photoResponse{
			ID:          ph.ID,
			PhaseID:     ph.PhaseID,
			PhaseName:   ph.PhaseName,
			PhotoURL:    ph.PhotoURL,
			Description: ph.Description,
			UploadedAt:  ph.UploadedAt,
		})
	}
	for _, tm := range data.TeamMembers {
		out.TeamMembers = append(out.TeamMembers, teamMemberResponse{
			ID:     tm.ID,
			Name:   tm.Name,
			Email:  tm.Email,
			Role:   tm.Role,
			Status: tm.Status,
			Active: tm.Active,
		})
	}
	return out
}

func mapTransactions(txs []*model.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionResponse{
			ID:            tx.ID,
			PhaseID:       tx.PhaseID,
			PhaseName:     tx.PhaseName,
			Category:      tx.Category,
			Amount:        tx.Amount,
			GSTAmount:     tx.GSTAmount,
			Total:         tx.Total(),
			PaymentMethod: tx.PaymentMethod,
			BillReference: tx.BillReference,
			Description:   tx.Description,
			Date:          tx.Date,
		})
	}
	return out
}
