// projectdata.go — загрузка данных проекта по категориям.
// Категории читаются параллельно (errgroup) и независимо: ошибка одной
// не отменяет остальные. Имена фаз проставляются после загрузки всех категорий.
package service

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/visibility"
	"github.com/Mathew1304/Expense-Tracker-sub000/internal/repository"
)

// categoryLoadErrorMessage — текст уведомления для незагруженной категории.
const categoryLoadErrorMessage = "не удалось загрузить данные категории"

// projectLoadErrorMessage — текст уведомления для незагруженной карточки проекта.
const projectLoadErrorMessage = "не удалось загрузить сведения о проекте"

var categoryLoadErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sm_category_load_errors_total",
	Help: "Количество ошибок загрузки категорий данных проекта.",
}, []string{"category"})

// ProjectDataLoader читает категории данных проекта из репозитория.
type ProjectDataLoader struct {
	projects repository.ProjectRepository
	logger   *slog.Logger
}

// NewProjectDataLoader создаёт загрузчик данных проекта.
func NewProjectDataLoader(projects repository.ProjectRepository, logger *slog.Logger) *ProjectDataLoader {
	return &ProjectDataLoader{
		projects: projects,
		logger:   logger.With(slog.String("component", "project_data_loader")),
	}
}

// Load загружает указанные категории проекта.
// Фазы читаются и тогда, когда они не запрошены, но нужны для имён фаз
// расходов, доходов или фотографий; в результат они попадают только если запрошены.
// Незапрошенные и незагруженные категории возвращаются пустыми срезами.
func (l *ProjectDataLoader) Load(ctx context.Context, projectID string, categories []visibility.Category) (model.ProjectData, []CategoryError) {
	want := make(map[visibility.Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	needPhases := want[visibility.CategoryPhases] || want[visibility.CategoryExpenses] ||
		want[visibility.CategoryIncome] || want[visibility.CategoryPhasePhotos]

	var (
		data model.ProjectData
		errs = make(map[visibility.Category]error, len(visibility.AllCategories))
		g    errgroup.Group
	)

	// Каждая горутина пишет только в свой слот; errs заполняется после Wait.
	var phasesErr, expensesErr, incomeErr, materialsErr, photosErr, membersErr error

	if needPhases {
		g.Go(func() error {
			data.Phases, phasesErr = l.projects.ListPhases(ctx, projectID)
			return nil
		})
	}
	if want[visibility.CategoryExpenses] {
		g.Go(func() error {
			data.Expenses, expensesErr = l.projects.ListTransactions(ctx, projectID, model.TransactionExpense)
			return nil
		})
	}
	if want[visibility.CategoryIncome] {
		g.Go(func() error {
			data.Income, incomeErr = l.projects.ListTransactions(ctx, projectID, model.TransactionIncome)
			return nil
		})
	}
	if want[visibility.CategoryMaterials] {
		g.Go(func() error {
			data.Materials, materialsErr = l.projects.ListMaterials(ctx, projectID)
			return nil
		})
	}
	if want[visibility.CategoryPhasePhotos] {
		g.Go(func() error {
			data.PhasePhotos, photosErr = l.projects.ListPhasePhotos(ctx, projectID)
			return nil
		})
	}
	if want[visibility.CategoryTeamMembers] {
		g.Go(func() error {
			data.TeamMembers, membersErr = l.projects.ListTeamMembers(ctx, projectID)
			return nil
		})
	}
	_ = g.Wait()

	errs[visibility.CategoryPhases] = phasesErr
	errs[visibility.CategoryExpenses] = expensesErr
	errs[visibility.CategoryIncome] = incomeErr
	errs[visibility.CategoryMaterials] = materialsErr
	errs[visibility.CategoryPhasePhotos] = photosErr
	errs[visibility.CategoryTeamMembers] = membersErr

	var notices []CategoryError
	for _, c := range visibility.AllCategories {
		err := errs[c]
		if err == nil {
			continue
		}
		l.logger.Warn("Ошибка загрузки категории данных проекта",
			slog.String("project_id", projectID),
			slog.String("category", string(c)),
			slog.String("error", err.Error()),
		)
		categoryLoadErrorsTotal.WithLabelValues(string(c)).Inc()
		if want[c] {
			notices = append(notices, CategoryError{Category: c, Message: categoryLoadErrorMessage})
		}
	}

	AttachPhaseNames(data.Phases, data.Expenses, data.Income, data.PhasePhotos)

	if !want[visibility.CategoryPhases] || phasesErr != nil {
		data.Phases = nil
	}
	if expensesErr != nil {
		data.Expenses = nil
	}
	if incomeErr != nil {
		data.Income = nil
	}
	if materialsErr != nil {
		data.Materials = nil
	}
	if photosErr != nil {
		data.PhasePhotos = nil
	}
	if membersErr != nil {
		data.TeamMembers = nil
	}

	return normalize(data), notices
}

// AttachPhaseNames проставляет PhaseName записям по phase_id.
// Пустой phase_id даёт "No Phase", отсутствующая фаза — "Unknown Phase".
func AttachPhaseNames(phases []*model.Phase, expenses, income []*model.Transaction, photos []*model.PhasePhoto) {
	names := make(map[string]string, len(phases))
	for _, ph := range phases {
		names[ph.ID] = ph.Name
	}
	resolve := func(phaseID *string) string {
		if phaseID == nil || *phaseID == "" {
			return model.NoPhaseLabel
		}
		if name, ok := names[*phaseID]; ok {
			return name
		}
		return model.UnknownPhaseLabel
	}

	for _, tx := range expenses {
		tx.PhaseName = resolve(tx.PhaseID)
	}
	for _, tx := range income {
		tx.PhaseName = resolve(tx.PhaseID)
	}
	for _, p := range photos {
		p.PhaseName = resolve(p.PhaseID)
	}
}

// normalize заменяет nil-срезы пустыми.
func normalize(data model.ProjectData) model.ProjectData {
	if data.Phases == nil {
		data.Phases = []*model.Phase{}
	}
	if data.Expenses == nil {
		data.Expenses = []*model.Transaction{}
	}
	if data.Income == nil {
		data.Income = []*model.Transaction{}
	}
	if data.Materials == nil {
		data.Materials = []*model.Material{}
	}
	if data.PhasePhotos == nil {
		data.PhasePhotos = []*model.PhasePhoto{}
	}
	if data.TeamMembers == nil {
		data.TeamMembers = []*model.TeamMember{}
	}
	return data
}
