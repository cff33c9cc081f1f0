// layout.go — курсор страницы и примитивы компоновки: заголовки, абзацы,
// таблицы с повтором шапки, итоговые блоки.
package report

import (
	"strconv"
	"strings"
)

// Геометрия страницы, мм.
const (
	marginX      = 15.0
	marginTop    = 18.0
	marginBottom = 18.0
	lineHeight   = 5.5
	rowHeight    = 7.0
	headerHeight = 8.0
	cellPadding  = 1.5
)

// Палитра отчёта.
var (
	colorText      = RGB{33, 37, 41}
	colorMuted     = RGB{108, 117, 125}
	colorAccent    = RGB{13, 71, 161}
	colorHeaderBg  = RGB{13, 71, 161}
	colorHeaderFg  = RGB{255, 255, 255}
	colorStripe    = RGB{245, 247, 250}
	colorTotalBg   = RGB{227, 242, 253}
	colorBorder    = RGB{206, 212, 218}
	colorPositive  = RGB{46, 125, 50}
	colorNegative  = RGB{198, 40, 40}
	colorWarning   = RGB{239, 108, 0}
	colorTile      = RGB{236, 239, 241}
	colorImageGray = RGB{224, 224, 224}
)

// column — колонка таблицы: заголовок, доля ширины и выравнивание.
type column struct {
	title  string
	weight float64
	align  string
}

// layout — состояние компоновки: холст и вертикальный курсор.
type layout struct {
	c        Canvas
	pageW    float64
	pageH    float64
	contentW float64
	y        float64
	started  bool
}

func newLayout(c Canvas) *layout {
	w, h := c.PageSize()
	return &layout{
		c:        c,
		pageW:    w,
		pageH:    h,
		contentW: w - 2*marginX,
	}
}

// bottom — нижняя граница области содержимого.
func (l *layout) bottom() float64 {
	return l.pageH - marginBottom
}

// newPage открывает страницу с номером в нижнем колонтитуле.
func (l *layout) newPage() {
	l.c.AddPage()
	l.started = true
	l.y = marginTop

	l.c.SetFont(StyleItalic, 8)
	l.c.SetTextColor(colorMuted)
	l.c.Text(marginX, l.pageH-marginBottom+6, l.contentW, 5, "Page "+strconv.Itoa(l.c.PageCount()), AlignCenter)
	l.c.SetTextColor(colorText)
}

// ensure гарантирует h мм свободного места, при нехватке открывает страницу.
// Возвращает true, если страница была открыта.
func (l *layout) ensure(h float64) bool {
	if !l.started || l.y+h > l.bottom() {
		l.newPage()
		return true
	}
	return false
}

// space сдвигает курсор вниз.
func (l *layout) space(h float64) {
	l.y += h
}

// sectionTitle выводит заголовок секции с подчёркиванием.
// Заголовок не остаётся последней строкой страницы.
func (l *layout) sectionTitle(title string) {
	l.ensure(headerHeight + 3*rowHeight)
	l.c.SetFont(StyleBold, 14)
	l.c.SetTextColor(colorAccent)
	l.c.Text(marginX, l.y, l.contentW, headerHeight, title, AlignLeft)
	l.y += headerHeight
	l.c.SetDrawColor(colorAccent)
	l.c.Line(marginX, l.y, marginX+l.contentW, l.y)
	l.c.SetTextColor(colorText)
	l.y += 3
}

// subTitle выводит подзаголовок (например, имя фазы).
func (l *layout) subTitle(text string) {
	l.c.SetFont(StyleBold, 11)
	l.c.SetTextColor(colorText)
	l.c.Text(marginX, l.y, l.contentW, rowHeight, text, AlignLeft)
	l.y += rowHeight
}

// paragraph выводит текст с переносом строк и разрывом страниц.
func (l *layout) paragraph(text string, style string, size float64, color RGB) {
	l.c.SetFont(style, size)
	l.c.SetTextColor(color)
	for _, line := range l.c.SplitText(text, l.contentW) {
		if l.ensure(lineHeight) {
			l.c.SetFont(style, size)
			l.c.SetTextColor(color)
		}
		l.c.Text(marginX, l.y, l.contentW, lineHeight, line, AlignLeft)
		l.y += lineHeight
	}
	l.c.SetTextColor(colorText)
}

// noData выводит предложение-заглушку для пустой секции.
func (l *layout) noData(sentence string) {
	l.paragraph(sentence, StyleItalic, 10, colorMuted)
	l.space(4)
}

// infoRow выводит строку "метка: значение" с цветом значения.
func (l *layout) infoRow(label, value string, valueColor RGB) {
	l.ensure(rowHeight)
	l.c.SetFont(StyleBold, 10)
	l.c.SetTextColor(colorMuted)
	l.c.Text(marginX, l.y, 40, rowHeight, label, AlignLeft)
	l.c.SetFont(StyleRegular, 10)
	l.c.SetTextColor(valueColor)
	l.c.Text(marginX+40, l.y, l.contentW-40, rowHeight, value, AlignLeft)
	l.c.SetTextColor(colorText)
	l.y += rowHeight
}

// widths переводит доли колонок в миллиметры.
func (l *layout) widths(cols []column) []float64 {
	var total float64
	for _, col := range cols {
		total += col.weight
	}
	out := make([]float64, len(cols))
	for i, col := range cols {
		out[i] = l.contentW * col.weight / total
	}
	return out
}

// tableHeader рисует шапку таблицы.
func (l *layout) tableHeader(cols []column, widths []float64) {
	l.c.SetFillColor(colorHeaderBg)
	l.c.FillRect(marginX, l.y, l.contentW, headerHeight)
	l.c.SetFont(StyleBold, 9)
	l.c.SetTextColor(colorHeaderFg)
	x := marginX
	for i, col := range cols {
		l.c.Text(x+cellPadding, l.y, widths[i]-2*cellPadding, headerHeight, col.title, col.align)
		x += widths[i]
	}
	l.c.SetTextColor(colorText)
	l.y += headerHeight
}

// table выводит строки таблицы; при переносе на новую страницу шапка повторяется.
// Значения, не помещающиеся в ячейку, укорачиваются с "...".
func (l *layout) table(cols []column, rows [][]string) {
	widths := l.widths(cols)
	l.ensure(headerHeight + rowHeight)
	l.tableHeader(cols, widths)

	for r, row := range rows {
		if l.ensure(rowHeight) {
			l.tableHeader(cols, widths)
		}
		if r%2 == 1 {
			l.c.SetFillColor(colorStripe)
			l.c.FillRect(marginX, l.y, l.contentW, rowHeight)
		}
		l.c.SetFont(StyleRegular, 9)
		x := marginX
		for i, col := range cols {
			w := widths[i] - 2*cellPadding
			l.c.Text(x+cellPadding, l.y, w, rowHeight, l.fit(row[i], w), col.align)
			x += widths[i]
		}
		l.y += rowHeight
	}

	l.c.SetDrawColor(colorBorder)
	l.c.Line(marginX, l.y, marginX+l.contentW, l.y)
	l.space(3)
}

// totalBox выводит выделенный блок итога.
func (l *layout) totalBox(label, value string, valueColor RGB) {
	const h = 11.0
	l.ensure(h + 2)
	l.c.SetFillColor(colorTotalBg)
	l.c.FillRect(marginX, l.y, l.contentW, h)
	l.c.SetFont(StyleBold, 11)
	l.c.SetTextColor(colorText)
	l.c.Text(marginX+4, l.y, l.contentW/2, h, label, AlignLeft)
	l.c.SetTextColor(valueColor)
	l.c.Text(marginX+l.contentW/2, l.y, l.contentW/2-4, h, value, AlignRight)
	l.c.SetTextColor(colorText)
	l.y += h + 6
}

// fit укорачивает текст до ширины w текущим шрифтом.
func (l *layout) fit(text string, w float64) string {
	text = strings.Join(strings.Fields(text), " ")
	if l.c.TextWidth(text) <= w {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimSpace(string(runes)) + "..."
		if l.c.TextWidth(candidate) <= w {
			return candidate
		}
	}
	return ""
}
