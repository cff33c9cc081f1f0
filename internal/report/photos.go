// photos.go — секция фотографий: группы по фазам, сетка 2 фото в ряд,
// не более 3 рядов на странице, при переносе заголовок фазы повторяется
// с пометкой "(continued)".
package report

import (
	"fmt"
	"log/slog"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/domain/model"
)

// Геометрия сетки фотографий, мм.
const (
	photosPerRow        = 2
	maxPhotoRowsPerPage = 3
	photoGap            = 6.0
	photoBoxHeight      = 62.0
	photoCaptionHeight  = 10.0
	photoRowHeight      = photoBoxHeight + photoCaptionHeight
)

// photoGroup — фотографии одной фазы (индексы в Data.PhasePhotos).
type photoGroup struct {
	phase   string
	indices []int
}

// groupPhotos группирует фотографии по имени фазы в порядке первого появления.
func groupPhotos(photos []*model.PhasePhoto) []photoGroup {
	var groups []photoGroup
	pos := make(map[string]int)
	for i, p := range photos {
		name := p.PhaseName
		if name == "" {
			name = model.NoPhaseLabel
		}
		gi, ok := pos[name]
		if !ok {
			gi = len(groups)
			pos[name] = gi
			groups = append(groups, photoGroup{phase: name})
		}
		groups[gi].indices = append(groups[gi].indices, i)
	}
	return groups
}

func (b *builder) photos() {
	l := b.l
	photos := b.in.Data.PhasePhotos
	l.sectionTitle(fmt.Sprintf("Phase Photos (%d)", len(photos)))

	cellW := (l.contentW - photoGap*(photosPerRow-1)) / photosPerRow
	page := l.c.PageCount()
	rows := 0

	for _, g := range groupPhotos(photos) {
		if l.ensure(rowHeight + photoRowHeight) {
			page, rows = l.c.PageCount(), 0
		}
		l.subTitle(fmt.Sprintf("%s (%d %s)", g.phase, len(g.indices), plural(len(g.indices), "photo", "photos")))

		for r := 0; r*photosPerRow < len(g.indices); r++ {
			if l.c.PageCount() != page {
				page, rows = l.c.PageCount(), 0
			}
			if rows == maxPhotoRowsPerPage || l.y+photoRowHeight > l.bottom() {
				l.newPage()
				page, rows = l.c.PageCount(), 0
				l.subTitle(g.phase + " (continued)")
			}

			for col := range photosPerRow {
				k := r*photosPerRow + col
				if k >= len(g.indices) {
					break
				}
				idx := g.indices[k]
				x := marginX + float64(col)*(cellW+photoGap)
				b.photoCell(idx, x, l.y, cellW, photos[idx])
			}
			l.y += photoRowHeight
			rows++
		}
		l.space(4)
	}
}

// photoCell рисует фото с подписью; при любой ошибке — серый блок-заглушку.
func (b *builder) photoCell(idx int, x, y, w float64, photo *model.PhasePhoto) {
	l := b.l
	img := b.images[idx]

	embedded := false
	if img.err == nil && img.w > 0 && img.h > 0 {
		iw, ih := fitBox(float64(img.w), float64(img.h), w, photoBoxHeight)
		ix := x + (w-iw)/2
		iy := y + (photoBoxHeight-ih)/2
		if err := l.c.Image(fmt.Sprintf("photo-%d", idx), ix, iy, iw, ih, img.jpeg); err != nil {
			b.logger.Warn("Не удалось встроить изображение в PDF",
				slog.String("url", photo.PhotoURL),
				slog.String("error", err.Error()),
			)
		} else {
			embedded = true
		}
	}

	if embedded {
		b.result.Images++
		l.c.SetDrawColor(colorBorder)
		l.c.StrokeRect(x, y, w, photoBoxHeight)
	} else {
		b.result.Placeholders++
		l.c.SetFillColor(colorImageGray)
		l.c.FillRect(x, y, w, photoBoxHeight)
		l.c.SetFont(StyleItalic, 10)
		l.c.SetTextColor(colorMuted)
		l.c.Text(x, y, w, photoBoxHeight, ImageNotAvailable, AlignCenter)
		l.c.SetTextColor(colorText)
	}

	caption := orDefault(photo.Description, "Uploaded "+FormatDate(&photo.UploadedAt, NotSetLabel))
	l.c.SetFont(StyleRegular, 8)
	l.c.SetTextColor(colorMuted)
	l.c.Text(x, y+photoBoxHeight+1, w, photoCaptionHeight-2, l.fit(caption, w), AlignCenter)
	l.c.SetTextColor(colorText)
}

// fitBox вписывает изображение iw×ih в рамку bw×bh с сохранением пропорций.
func fitBox(iw, ih, bw, bh float64) (w, h float64) {
	scale := bw / iw
	if s := bh / ih; s < scale {
		scale = s
	}
	return iw * scale, ih * scale
}
