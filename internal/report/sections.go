// sections.go — секции отчёта кроме фотографий.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
)

// statusColor — акцентный цвет статуса проекта.
func statusColor(status string) RGB {
	switch strings.ToLower(status) {
	case "completed":
		return colorPositive
	case "in_progress", "active":
		return colorAccent
	case "on_hold", "delayed":
		return colorWarning
	case "cancelled":
		return colorNegative
	default:
		return colorMuted
	}
}

func (b *builder) overview() {
	l := b.l
	p := b.in.Project
	l.newPage()

	l.c.SetFont(StyleBold, 20)
	l.c.SetTextColor(colorAccent)
	for _, line := range l.c.SplitText(p.Name, l.contentW) {
		l.c.Text(marginX, l.y, l.contentW, 10, line, AlignCenter)
		l.y += 10
	}
	l.c.SetFont(StyleRegular, 11)
	l.c.SetTextColor(colorMuted)
	l.c.Text(marginX, l.y, l.contentW, lineHeight, "Project Report", AlignCenter)
	l.y += lineHeight
	l.c.SetFont(StyleItalic, 9)
	l.c.Text(marginX, l.y, l.contentW, lineHeight, "Generated on "+b.in.GeneratedAt.Format(dateLayout), AlignCenter)
	l.c.SetTextColor(colorText)
	l.space(lineHeight + 6)

	l.sectionTitle("Project Overview")
	l.infoRow("Status", humanize(p.Status), statusColor(p.Status))
	l.infoRow("Location", orDefault(p.Location, NotSpecifiedLabel), colorText)
	l.infoRow("Start Date", FormatDate(p.StartDate, NotSetLabel), colorText)
	l.infoRow("End Date", FormatDate(p.EndDate, NotSetLabel), colorText)
	l.space(3)

	l.ensure(rowHeight + lineHeight)
	l.subTitle("Description")
	l.paragraph(orDefault(p.Description, "No description provided."), StyleRegular, 10, colorText)
	l.space(6)
}

func (b *builder) phases() {
	l := b.l
	phases := b.in.Data.Phases
	l.sectionTitle("Phases")
	if len(phases) == 0 {
		l.noData("No phases have been added to this project.")
		return
	}

	cols := []column{
		{"Phase", 3, AlignLeft},
		{"Status", 2, AlignLeft},
		{"Start", 2, AlignLeft},
		{"End", 2, AlignLeft},
		{"Est. Cost", 2.4, AlignRight},
		{"Contractor", 2.6, AlignLeft},
	}
	rows := make([][]string, 0, len(phases))
	for _, ph := range phases {
		cost := NotSetTableLabel
		if ph.EstimatedCost != nil {
			cost = FormatMoney(*ph.EstimatedCost)
		}
		rows = append(rows, []string{
			ph.Name,
			humanize(ph.Status),
			FormatDate(ph.StartDate, NotSetTableLabel),
			FormatDate(ph.EndDate, NotSetTableLabel),
			cost,
			orDefault(ph.ContractorName, NotAssignedLabel),
		})
	}
	l.table(cols, rows)
	l.space(3)
}

// transactionRows формирует строки таблицы расходов или доходов.
func transactionRows(txs []*model.Transaction) [][]string {
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		phase := tx.PhaseName
		if phase == "" {
			phase = model.NoPhaseLabel
		}
		rows = append(rows, []string{
			tx.Date.Format(dateLayout),
			phase,
			orDefault(tx.Category, "-"),
			FormatMoney(tx.Amount),
			FormatGST(tx.GSTAmount),
			FormatMoney(tx.Total()),
			humanize(orDefault(tx.PaymentMethod, "-")),
		})
	}
	return rows
}

var transactionColumns = []column{
	{"Date", 2.1, AlignLeft},
	{"Phase", 2.4, AlignLeft},
	{"Category", 2.2, AlignLeft},
	{"Amount", 2.3, AlignRight},
	{"GST", 2, AlignRight},
	{"Total", 2.4, AlignRight},
	{"Payment", 1.8, AlignLeft},
}

func (b *builder) expenses() {
	l := b.l
	l.sectionTitle("Expenses")
	if len(b.in.Data.Expenses) == 0 {
		l.noData("No expenses have been recorded for this project.")
		return
	}
	l.table(transactionColumns, transactionRows(b.in.Data.Expenses))
	l.totalBox("Total Expenses", FormatMoney(b.result.Totals.Expenses), colorNegative)
}

func (b *builder) income() {
	l := b.l
	l.sectionTitle("Income")
	if len(b.in.Data.Income) == 0 {
		l.noData("No income has been recorded for this project.")
		return
	}
	l.table(transactionColumns, transactionRows(b.in.Data.Income))
	l.totalBox("Total Income", FormatMoney(b.result.Totals.Income), colorPositive)
}

func (b *builder) materials() {
	l := b.l
	materials := b.in.Data.Materials
	l.sectionTitle("Materials")
	if len(materials) == 0 {
		l.noData("No materials have been added to this project.")
		return
	}

	cols := []column{
		{"Material", 3.2, AlignLeft},
		{"Unit Cost", 2.4, AlignRight},
		{"Quantity", 2.2, AlignRight},
		{"Status", 2, AlignLeft},
		{"Last Updated", 2.4, AlignLeft},
	}
	rows := make([][]string, 0, len(materials))
	for _, m := range materials {
		qty := strconv.FormatFloat(m.QtyRequired, 'f', -1, 64)
		if m.Unit != nil && *m.Unit != "" {
			qty += " " + *m.Unit
		}
		updated := m.UpdatedAt
		rows = append(rows, []string{
			m.Name,
			FormatMoney(m.UnitCost),
			qty,
			humanize(m.Status),
			FormatDate(&updated, NotSetTableLabel),
		})
	}
	l.table(cols, rows)
	if v := b.result.Totals.InventoryValue; v > 0 {
		l.totalBox("Total Inventory Value", FormatMoney(v), colorAccent)
	}
}

func (b *builder) team() {
	l := b.l
	members := b.in.Data.TeamMembers
	l.sectionTitle("Team")
	if len(members) == 0 {
		l.noData("No team members have been added to this project.")
		return
	}

	cols := []column{
		{"Name", 3, AlignLeft},
		{"Email", 4, AlignLeft},
		{"Status", 2, AlignLeft},
		{"Active", 1.6, AlignLeft},
	}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		active := "Inactive"
		if m.Active {
			active = "Active"
		}
		rows = append(rows, []string{
			m.Name,
			orDefault(m.Email, "Not provided"),
			humanize(m.Status),
			active,
		})
	}
	l.table(cols, rows)
	l.space(3)
}

// tile — плитка сводки.
type tile struct {
	label string
	value string
	color RGB
}

func (b *builder) summary() {
	l := b.l
	d := b.in.Data
	t := b.result.Totals
	p := b.in.Project

	netColor := colorPositive
	if t.Net < 0 {
		netColor = colorNegative
	}
	net := FormatMoney(t.Net)
	if t.Net > 0 {
		net = "+" + net
	}

	tiles := []tile{
		{"Phases", strconv.Itoa(len(d.Phases)), colorText},
		{"Total Expenses", FormatMoney(t.Expenses), colorText},
		{"Total Income", FormatMoney(t.Income), colorText},
		{"Net", net, netColor},
		{"Materials", strconv.Itoa(len(d.Materials)), colorText},
		{"Team Size", strconv.Itoa(len(d.TeamMembers)), colorText},
		{"Photos", strconv.Itoa(len(d.PhasePhotos)), colorText},
	}

	const (
		perRow = 4
		tileH  = 20.0
		gap    = 4.0
	)
	tileW := (l.contentW - gap*(perRow-1)) / perRow
	tileRows := (len(tiles) + perRow - 1) / perRow

	l.ensure(headerHeight + float64(tileRows)*(tileH+gap) + 4*lineHeight)
	l.sectionTitle("Summary")
	for i, tl := range tiles {
		col := i % perRow
		if i > 0 && col == 0 {
			l.y += tileH + gap
		}
		x := marginX + float64(col)*(tileW+gap)
		l.c.SetFillColor(colorTile)
		l.c.FillRect(x, l.y, tileW, tileH)
		l.c.SetFont(StyleRegular, 8)
		l.c.SetTextColor(colorMuted)
		l.c.Text(x, l.y+2, tileW, 6, tl.label, AlignCenter)
		l.c.SetFont(StyleBold, 11)
		l.c.SetTextColor(tl.color)
		l.c.Text(x, l.y+9, tileW, 8, l.fit(tl.value, tileW-2), AlignCenter)
	}
	l.c.SetTextColor(colorText)
	l.y += tileH + 8

	position := "surplus"
	if t.Net < 0 {
		position = "deficit"
	}
	bullets := []string{
		fmt.Sprintf("Project %q is currently %s.", p.Name, strings.ToLower(humanize(p.Status))),
		fmt.Sprintf("Timeline: %s to %s.", FormatDate(p.StartDate, NotSetLabel), FormatDate(p.EndDate, NotSetLabel)),
		fmt.Sprintf("%d %s defined for the project.", len(d.Phases), plural(len(d.Phases), "phase", "phases")),
		fmt.Sprintf("Total expenses of %s against total income of %s.", FormatMoney(t.Expenses), FormatMoney(t.Income)),
		fmt.Sprintf("Net position: %s (%s).", FormatMoney(t.Net), position),
		fmt.Sprintf("%d %s tracked, %d team %s, %d %s.",
			len(d.Materials), plural(len(d.Materials), "material", "materials"),
			len(d.TeamMembers), plural(len(d.TeamMembers), "member", "members"),
			len(d.PhasePhotos), plural(len(d.PhasePhotos), "photo", "photos")),
	}
	if t.InventoryValue > 0 {
		bullets = append(bullets, "Inventory value of materials: "+FormatMoney(t.InventoryValue)+".")
	}
	bullets = append(bullets, "Report generated on "+b.in.GeneratedAt.Format(dateLayout)+".")

	for _, line := range bullets {
		l.paragraph("\u2022 "+line, StyleRegular, 10, colorText)
	}
}
