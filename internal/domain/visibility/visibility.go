// Пакет visibility — фильтр видимости категорий данных по флагам ссылки.
// Фильтрация только на уровне категорий: внутри категории поля не скрываются.
package visibility

import "github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"

// Category — категория данных проекта.
type Category string

const (
	CategoryPhases      Category = "phases"
	CategoryExpenses    Category = "expenses"
	CategoryIncome      Category = "income"
	CategoryMaterials   Category = "materials"
	CategoryPhasePhotos Category = "phase_photos"
	CategoryTeamMembers Category = "team_members"
)

// AllCategories — все категории в порядке отображения.
var AllCategories = []Category{
	CategoryPhases,
	CategoryExpenses,
	CategoryIncome,
	CategoryMaterials,
	CategoryPhasePhotos,
	CategoryTeamMembers,
}

// Allows сообщает, разрешена ли категория флагами opts.
func Allows(opts model.ShareOptions, c Category) bool {
	switch c {
	case CategoryPhases:
		return opts.PhaseDetails
	case CategoryExpenses:
		return opts.ExpenseDetails
	case CategoryIncome:
		return opts.IncomeDetails
	case CategoryMaterials:
		return opts.MaterialsDetails
	case CategoryPhasePhotos:
		return opts.PhasePhotos
	case CategoryTeamMembers:
		return opts.TeamMembers
	default:
		return false
	}
}

// Included возвращает разрешённые категории в порядке AllCategories.
func Included(opts model.ShareOptions) []Category {
	var result []Category
	for _, c := range AllCategories {
		if Allows(opts, c) {
			result = append(result, c)
		}
	}
	return result
}

// Filter возвращает копию data, в которой запрещённые категории заменены
// пустыми срезами. Пустой срез и «категория не расшарена» неразличимы.
func Filter(opts model.ShareOptions, data model.ProjectData) model.ProjectData {
	out := model.ProjectData{
		Phases:      []*model.Phase{},
		Expenses:    []*model.Transaction{},
		Income:      []*model.Transaction{},
		Materials:   []*model.Material{},
		PhasePhotos: []*model.PhasePhoto{},
		TeamMembers: []*model.TeamMember{},
	}
	if opts.PhaseDetails && data.Phases != nil {
		out.Phases = data.Phases
	}
	if opts.ExpenseDetails && data.Expenses != nil {
		out.Expenses = data.Expenses
	}
	if opts.IncomeDetails && data.Income != nil {
		out.Income = data.Income
	}
	if opts.MaterialsDetails && data.Materials != nil {
		out.Materials = data.Materials
	}
	if opts.PhasePhotos && data.PhasePhotos != nil {
		out.PhasePhotos = data.PhasePhotos
	}
	if opts.TeamMembers && data.TeamMembers != nil {
		out.TeamMembers = data.TeamMembers
	}
	return out
}
