// report.go — генерация PDF-отчёта по проекту владельца.
// Отчёт не зависит от ссылок доступа: включаются все категории данных.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/visibility"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/report"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/repository"
)

// Archiver сохраняет копию отчёта во внешнее хранилище.
type Archiver interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// ReportOutput — сгенерированный отчёт.
type ReportOutput struct {
	Filename string
	PDF      []byte
	Result   *report.Result
}

// ReportService генерирует отчёты.
type ReportService struct {
	projects repository.ProjectRepository
	loader   *ProjectDataLoader
	compiler *report.Compiler
	archive  Archiver
	keyFunc  func(projectID, filename string) string
	now      func() time.Time
	logger   *slog.Logger
}

// NewReportService создаёт сервис отчётов.
// archive может быть nil — копии отчётов не сохраняются.
func NewReportService(
	projects repository.ProjectRepository,
	loader *ProjectDataLoader,
	compiler *report.Compiler,
	archive Archiver,
	keyFunc func(projectID, filename string) string,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		projects: projects,
		loader:   loader,
		compiler: compiler,
		archive:  archive,
		keyFunc:  keyFunc,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "report_service")),
	}
}

// Generate собирает отчёт по проекту владельца.
// Незагруженная категория выводится в отчёте как пустая секция.
// Ошибка сохранения в архив только логируется.
func (s *ReportService) Generate(ctx context.Context, owner, projectID string) (*ReportOutput, error) {
	project, err := ownedProject(ctx, s.projects, owner, projectID)
	if err != nil {
		return nil, err
	}

	data, notices := s.loader.Load(ctx, projectID, visibility.AllCategories)
	if len(notices) > 0 {
		s.logger.Warn("Отчёт собирается без части данных",
			slog.String("project_id", projectID),
			slog.Int("failed_categories", len(notices)),
		)
	}

	var buf bytes.Buffer
	result, err := s.compiler.Compile(ctx, &buf, report.Input{
		Project:     project,
		Data:        data,
		GeneratedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("компоновка отчёта: %w", err)
	}

	if s.archive != nil {
		key := s.keyFunc(projectID, result.Filename)
		if err := s.archive.Put(ctx, key, buf.Bytes(), "application/pdf"); err != nil {
			s.logger.Warn("Не удалось сохранить отчёт в архив",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return &ReportOutput{
		Filename: result.Filename,
		PDF:      buf.Bytes(),
		Result:   result,
	}, nil
}
