package objectstore

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestArchive создаёт архив поверх httptest-сервера, имитирующего S3.
func newTestArchive(t *testing.T, handler http.HandlerFunc) *Archive {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := New(Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Region:    "us-east-1",
		Bucket:    "reports",
		AccessKey: "test",
		SecretKey: "test-secret",
		UseSSL:    false,
		PathStyle: true,
	}, slog.Default())
	if err != nil {
		t.Fatalf("New() вернул ошибку: %v", err)
	}
	return a
}

// TestReportKey проверяет формат ключа отчёта.
func TestReportKey(t *testing.T) {
	got := ReportKey("p-1", "Villa_Report_2026-05-01.pdf")
	if got != "reports/p-1/Villa_Report_2026-05-01.pdf" {
		t.Errorf("ReportKey() = %q", got)
	}
}

// TestPut проверяет PUT объекта в бакет (path-style).
func TestPut(t *testing.T) {
	var gotPath, gotType string
	a := newTestArchive(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("метод = %s, ожидался PUT", r.Method)
		}
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	})

	err := a.Put(context.Background(), "reports/p-1/r.pdf", []byte("%PDF-1.3"), "application/pdf")
	if err != nil {
		t.Fatalf("Put() вернул ошибку: %v", err)
	}
	if gotPath != "/reports/reports/p-1/r.pdf" {
		t.Errorf("path = %q", gotPath)
	}
	if gotType != "application/pdf" {
		t.Errorf("Content-Type = %q", gotType)
	}
}

// TestPut_ServerError проверяет возврат ошибки при отказе S3.
func TestPut_ServerError(t *testing.T) {
	a := newTestArchive(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
	})

	if err := a.Put(context.Background(), "k", []byte("x"), "application/pdf"); err == nil {
		t.Error("ожидалась ошибка при 403 от S3")
	}
}

// TestCheckReady_MissingBucket проверяет статус fail для отсутствующего бакета.
func TestCheckReady_MissingBucket(t *testing.T) {
	a := newTestArchive(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	status, _ := a.CheckReady()
	if status != "fail" {
		t.Errorf("CheckReady() = %q, ожидался fail", status)
	}
}
