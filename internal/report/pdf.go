// pdf.go — реализация Canvas на go-pdf/fpdf (A4, мм, встроенный шрифт Helvetica).
package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// fontFamily — встроенный шрифт PDF, кодировка cp1252.
const fontFamily = "Helvetica"

// pdfCanvas — Canvas поверх fpdf.Fpdf.
type pdfCanvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// NewPDFCanvas создаёт пустой A4-документ без автоматических разрывов страниц:
// разрывы расставляет компоновщик.
func NewPDFCanvas(title string) Canvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("share-module", true)
	pdf.SetFont(fontFamily, StyleRegular, 10)

	return &pdfCanvas{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *pdfCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *pdfCanvas) PageSize() (w, h float64) {
	return c.pdf.GetPageSize()
}

func (c *pdfCanvas) PageCount() int {
	return c.pdf.PageCount()
}

func (c *pdfCanvas) SetFont(style string, size float64) {
	c.pdf.SetFont(fontFamily, style, size)
}

func (c *pdfCanvas) SetTextColor(rgb RGB) {
	c.pdf.SetTextColor(rgb.R, rgb.G, rgb.B)
}

func (c *pdfCanvas) SetFillColor(rgb RGB) {
	c.pdf.SetFillColor(rgb.R, rgb.G, rgb.B)
}

func (c *pdfCanvas) SetDrawColor(rgb RGB) {
	c.pdf.SetDrawColor(rgb.R, rgb.G, rgb.B)
}

func (c *pdfCanvas) Text(x, y, w, h float64, text, align string) {
	c.pdf.SetXY(x, y)
	c.pdf.CellFormat(w, h, c.tr(text), "", 0, align+"M", false, 0, "")
}

func (c *pdfCanvas) FillRect(x, y, w, h float64) {
	c.pdf.Rect(x, y, w, h, "F")
}

func (c *pdfCanvas) StrokeRect(x, y, w, h float64) {
	c.pdf.Rect(x, y, w, h, "D")
}

func (c *pdfCanvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *pdfCanvas) TextWidth(text string) float64 {
	return c.pdf.GetStringWidth(c.tr(text))
}

func (c *pdfCanvas) SplitText(text string, w float64) []string {
	return c.pdf.SplitText(c.tr(text), w)
}

// Image регистрирует JPEG под именем name и рисует его.
// Ошибка fpdf сбрасывается, чтобы документ оставался валидным.
func (c *pdfCanvas) Image(name string, x, y, w, h float64, jpeg []byte) error {
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(jpeg))
	if err := c.pdf.Error(); err != nil {
		c.pdf.ClearError()
		return fmt.Errorf("регистрация изображения %s: %w", name, err)
	}
	c.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if err := c.pdf.Error(); err != nil {
		c.pdf.ClearError()
		return fmt.Errorf("вывод изображения %s: %w", name, err)
	}
	return nil
}

func (c *pdfCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}
