// compiler.go — сборка отчёта: секции в фиксированном порядке
// Overview → Phases → Phase Photos (если есть) → Expenses → Income →
// Materials → Team → Summary. Пустая секция выводит предложение-заглушку,
// а не пропускается.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
)

var (
	reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sm_reports_generated_total",
		Help: "Количество сгенерированных PDF-отчётов (по статусу).",
	}, []string{"status"})

	reportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sm_report_duration_seconds",
		Help:    "Длительность компоновки PDF-отчёта, включая загрузку изображений.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	reportImagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sm_report_images_total",
		Help: "Изображения отчётов по результату (embedded, placeholder).",
	}, []string{"result"})
)

// ImageSource загружает байты изображения по URL.
type ImageSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Input — данные для отчёта.
type Input struct {
	Project     *model.Project
	Data        model.ProjectData
	GeneratedAt time.Time
}

// Totals — агрегаты отчёта.
type Totals struct {
	// Expenses — Σ(amount + gst_amount) по расходам
	Expenses float64
	// Income — Σ(amount + gst_amount) по доходам
	Income float64
	// Net — Income − Expenses
	Net float64
	// InventoryValue — Σ(unit_cost × qty_required) по материалам
	InventoryValue float64
}

// Result — итог компоновки.
type Result struct {
	Filename     string
	Pages        int
	Images       int
	Placeholders int
	Totals       Totals
}

// DefaultMaxImagePixels — лимит пикселей изображения по умолчанию.
const DefaultMaxImagePixels = 40_000_000

// Compiler собирает PDF-отчёт по проекту.
type Compiler struct {
	images      ImageSource
	concurrency int
	maxPixels   int64
	newCanvas   func(title string) Canvas
	logger      *slog.Logger
}

// NewCompiler создаёт компоновщик отчётов.
// concurrency — число одновременных загрузок изображений (1 — последовательно).
func NewCompiler(images ImageSource, concurrency int, logger *slog.Logger) *Compiler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Compiler{
		images:      images,
		concurrency: concurrency,
		maxPixels:   DefaultMaxImagePixels,
		newCanvas:   NewPDFCanvas,
		logger:      logger.With(slog.String("component", "report_compiler")),
	}
}

// SetMaxImagePixels задаёт лимит ширина × высота; изображения больше лимита
// не декодируются и выводятся заглушкой. n < 1 игнорируется.
func (c *Compiler) SetMaxImagePixels(n int64) {
	if n >= 1 {
		c.maxPixels = n
	}
}

// Compile компонует отчёт и пишет PDF в w.
// Ошибка загрузки или декодирования отдельного изображения заменяется
// серым блоком "Image not available" и не прерывает компоновку.
func (c *Compiler) Compile(ctx context.Context, w io.Writer, in Input) (*Result, error) {
	start := time.Now()
	defer func() { reportDuration.Observe(time.Since(start).Seconds()) }()

	if in.Project == nil {
		reportsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("отчёт: проект не задан")
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}

	result := &Result{
		Filename: Filename(in.Project.Name, in.GeneratedAt),
		Totals:   computeTotals(in.Data),
	}

	images, err := c.prefetch(ctx, in.Data.PhasePhotos)
	if err != nil {
		reportsTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	canvas := c.newCanvas(in.Project.Name + " Report")
	b := &builder{
		l:      newLayout(canvas),
		in:     in,
		result: result,
		images: images,
		logger: c.logger,
	}

	b.overview()
	b.phases()
	if len(in.Data.PhasePhotos) > 0 {
		b.photos()
	}
	b.expenses()
	b.income()
	b.materials()
	b.team()
	b.summary()

	result.Pages = canvas.PageCount()
	if err := canvas.Output(w); err != nil {
		reportsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("вывод PDF: %w", err)
	}

	reportImagesTotal.WithLabelValues("embedded").Add(float64(result.Images))
	reportImagesTotal.WithLabelValues("placeholder").Add(float64(result.Placeholders))
	reportsTotal.WithLabelValues("ok").Inc()

	c.logger.Info("Отчёт сгенерирован",
		slog.String("project_id", in.Project.ID),
		slog.String("filename", result.Filename),
		slog.Int("pages", result.Pages),
		slog.Int("images", result.Images),
		slog.Int("placeholders", result.Placeholders),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// computeTotals считает суммы по расходам, доходам и материалам.
func computeTotals(data model.ProjectData) Totals {
	var t Totals
	for _, tx := range data.Expenses {
		t.Expenses += tx.Total()
	}
	for _, tx := range data.Income {
		t.Income += tx.Total()
	}
	for _, m := range data.Materials {
		t.InventoryValue += m.UnitCost * m.QtyRequired
	}
	t.Net = t.Income - t.Expenses
	return t
}

// builder — состояние одной компоновки.
type builder struct {
	l      *layout
	in     Input
	result *Result
	images []fetchedImage
	logger *slog.Logger
}
