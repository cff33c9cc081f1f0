// report.go — обработчик выгрузки PDF-отчёта по проекту.
package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// DownloadReport — GET /api/v1/projects/{projectId}/report.
// Отчёт не зависит от ссылок доступа и включает все категории.
func (h *APIHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	sub, ok := owner(w, r)
	if !ok {
		return
	}

	out, err := h.reports.Generate(r.Context(), sub, chi.URLParam(r, "projectId"))
	if err != nil {
		h.writeServiceError(w, err, "генерация отчёта")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.PDF)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.PDF)
}
