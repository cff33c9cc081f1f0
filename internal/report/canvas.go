// Пакет report — компоновка многостраничного PDF-отчёта по проекту.
// Compiler раскладывает секции по страницам поверх интерфейса Canvas;
// рабочая реализация Canvas — go-pdf/fpdf (pdf.go).
package report

import "io"

// Выравнивание текста в ячейке.
const (
	AlignLeft   = "L"
	AlignCenter = "C"
	AlignRight  = "R"
)

// Начертание шрифта.
const (
	StyleRegular = ""
	StyleBold    = "B"
	StyleItalic  = "I"
)

// RGB — цвет в компонентах 0–255.
type RGB struct {
	R, G, B int
}

// Canvas — минимальный набор операций рисования, нужный компоновщику.
// Координаты в миллиметрах от левого верхнего угла страницы.
type Canvas interface {
	AddPage()
	PageSize() (w, h float64)
	PageCount() int
	SetFont(style string, size float64)
	SetTextColor(c RGB)
	SetFillColor(c RGB)
	SetDrawColor(c RGB)
	// Text выводит одну строку в ячейку (x, y, w, h) с выравниванием align.
	Text(x, y, w, h float64, text, align string)
	FillRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64)
	Line(x1, y1, x2, y2 float64)
	// TextWidth возвращает ширину строки текущим шрифтом.
	TextWidth(text string) float64
	// SplitText разбивает текст на строки не шире w.
	SplitText(text string, w float64) []string
	// Image встраивает JPEG. Ошибка означает, что изображение не встроено,
	// а холст остаётся пригодным для дальнейшего рисования.
	Image(name string, x, y, w, h float64, jpeg []byte) error
	Output(w io.Writer) error
}
