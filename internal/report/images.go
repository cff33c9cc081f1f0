// images.go — загрузка и нормализация фотографий для встраивания.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // регистрация декодера GIF
	"image/jpeg"
	_ "image/png" // регистрация декодера PNG
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
)

// jpegQuality — качество перекодирования фотографий.
const jpegQuality = 85

// errNoImageSource — источник изображений не настроен.
var errNoImageSource = errors.New("источник изображений не настроен")

// errImageTooLarge — размеры изображения превышают лимит пикселей.
var errImageTooLarge = errors.New("изображение слишком большое")

// fetchedImage — фотография, готовая к встраиванию, или причина отказа.
type fetchedImage struct {
	jpeg []byte
	w, h int
	err  error
}

// prefetch загружает все фотографии не более чем в c.concurrency потоков.
// Ошибки отдельных фотографий сохраняются в результате; ошибка возвращается
// только при отмене ctx.
func (c *Compiler) prefetch(ctx context.Context, photos []*model.PhasePhoto) ([]fetchedImage, error) {
	out := make([]fetchedImage, len(photos))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, p := range photos {
		g.Go(func() error {
			out[i] = c.load(ctx, p.PhotoURL)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// load скачивает изображение, декодирует (JPEG, PNG, GIF) и перекодирует в JPEG
// на белом фоне.
func (c *Compiler) load(ctx context.Context, url string) fetchedImage {
	if c.images == nil {
		return fetchedImage{err: errNoImageSource}
	}

	data, err := c.images.Fetch(ctx, url)
	if err != nil {
		c.logger.Warn("Не удалось загрузить изображение",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return fetchedImage{err: err}
	}

	// Размеры из заголовка проверяются до декодирования: декодер выделяет
	// память под заявленные ширину и высоту.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		c.logger.Warn("Не удалось декодировать изображение",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return fetchedImage{err: fmt.Errorf("заголовок изображения: %w", err)}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > c.maxPixels {
		c.logger.Warn("Изображение превышает лимит пикселей",
			slog.String("url", url),
			slog.Int("width", cfg.Width),
			slog.Int("height", cfg.Height),
			slog.Int64("max_pixels", c.maxPixels),
		)
		return fetchedImage{err: fmt.Errorf("%w: %dx%d", errImageTooLarge, cfg.Width, cfg.Height)}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		c.logger.Warn("Не удалось декодировать изображение",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return fetchedImage{err: fmt.Errorf("декодирование изображения: %w", err)}
	}

	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fetchedImage{err: fmt.Errorf("кодирование JPEG: %w", err)}
	}
	return fetchedImage{jpeg: buf.Bytes(), w: bounds.Dx(), h: bounds.Dy()}
}
