// format.go — форматирование сумм, дат и имени файла отчёта.
package report

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Текстовые заглушки для отсутствующих значений.
const (
	NoGSTLabel          = "No GST"
	NotSetLabel         = "Not set"
	NotSetTableLabel    = "Not Set"
	NotAssignedLabel    = "Not Assigned"
	NotSpecifiedLabel   = "Not specified"
	ImageNotAvailable   = "Image not available"
	currencyPrefix      = "Rs. "
	dateLayout          = "02 Jan 2006"
	filenameDateLayout  = "2006-01-02"
	filenameSuffix      = "_Report_"
	defaultFilenameBase = "Project"
)

var (
	moneyPrinter = message.NewPrinter(language.English)
	unsafeChars  = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// FormatMoney форматирует сумму с разделителями разрядов: "Rs. 1,680.00".
// Отрицательные суммы получают префикс "-".
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = math.Abs(v)
	}
	return sign + currencyPrefix + moneyPrinter.Sprintf("%.2f", v)
}

// FormatGST возвращает "No GST" для нулевого налога, иначе сумму.
func FormatGST(v float64) string {
	if v == 0 {
		return NoGSTLabel
	}
	return FormatMoney(v)
}

// FormatDate форматирует дату; nil даёт placeholder.
func FormatDate(t *time.Time, placeholder string) string {
	if t == nil || t.IsZero() {
		return placeholder
	}
	return t.Format(dateLayout)
}

// Filename строит имя файла отчёта: <имя проекта>_Report_<YYYY-MM-DD>.pdf.
// Последовательности недопустимых символов заменяются одним "_".
func Filename(projectName string, now time.Time) string {
	base := strings.Trim(unsafeChars.ReplaceAllString(projectName, "_"), "_")
	if base == "" {
		base = defaultFilenameBase
	}
	return base + filenameSuffix + now.Format(filenameDateLayout) + ".pdf"
}

// orDefault возвращает *s или def для nil/пустой строки.
func orDefault(s *string, def string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return def
	}
	return *s
}

// humanize превращает "in_progress" в "In Progress".
func humanize(s string) string {
	if s == "" {
		return NotSetTableLabel
	}
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// plural выбирает форму слова по количеству.
func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
