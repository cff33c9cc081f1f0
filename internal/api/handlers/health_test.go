package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubChecker — ReadinessChecker с фиксированным ответом.
type stubChecker struct {
	status  string
	message string
}

func (s stubChecker) CheckReady() (string, string) {
	return s.status, s.message
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"все ok", []string{"ok", "ok"}, "ok"},
		{"один degraded", []string{"ok", "degraded"}, "degraded"},
		{"fail важнее degraded", []string{"degraded", "fail"}, "fail"},
		{"нет зависимостей", nil, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overallStatus(tt.statuses...); got != tt.want {
				t.Errorf("overallStatus(%v) = %q, ожидалось %q", tt.statuses, got, tt.want)
			}
		})
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []NamedChecker
		wantStatus int
		wantBody   string
	}{
		{"готов", []NamedChecker{
			{Name: "postgresql", Checker: stubChecker{"ok", ""}},
			{Name: "jwks", Checker: stubChecker{"ok", ""}},
		}, http.StatusOK, "ok"},
		{"деградация", []NamedChecker{
			{Name: "postgresql", Checker: stubChecker{"ok", ""}},
			{Name: "jwks", Checker: stubChecker{"degraded", "нет ключей"}},
		}, http.StatusOK, "degraded"},
		{"не инициализирован", []NamedChecker{
			{Name: "postgresql", Checker: nil},
		}, http.StatusServiceUnavailable, "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checkers...)
			rec := httptest.NewRecorder()

			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("ожидался статус %d, получен %d", tt.wantStatus, rec.Code)
			}
			var resp healthReadyResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("декодирование ответа: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("status = %q, ожидался %q", resp.Status, tt.wantBody)
			}
			if len(resp.Checks) != len(tt.checkers) {
				t.Errorf("ожидалось %d проверок, получено %d", len(tt.checkers), len(resp.Checks))
			}
			if resp.Service != serviceName {
				t.Errorf("service = %q", resp.Service)
			}
		})
	}
}

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler()
	rec := httptest.NewRecorder()

	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("ожидался статус 200, получен %d", rec.Code)
	}
}
