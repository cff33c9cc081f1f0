// imagecache.go — LRU-кэш изображений отчётов с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable поверх report.ImageSource.
package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Mathew1304/Expense-Tracker-sub000/internal/report"
)

// Prometheus-метрики кэша изображений.
var (
	imageCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sm_image_cache_hits_total",
		Help: "Общее количество попаданий в кэш изображений отчётов.",
	})
	imageCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sm_image_cache_misses_total",
		Help: "Общее количество промахов кэша изображений отчётов.",
	})
)

// ImageCache кэширует успешно загруженные изображения по URL.
// Ошибки загрузки не кэшируются: следующий отчёт попробует снова.
type ImageCache struct {
	source report.ImageSource
	cache  *expirable.LRU[string, []byte]
}

// NewImageCache создаёт кэш на maxSize изображений с временем жизни ttl.
func NewImageCache(source report.ImageSource, maxSize int, ttl time.Duration) *ImageCache {
	return &ImageCache{
		source: source,
		cache:  expirable.NewLRU[string, []byte](maxSize, nil, ttl),
	}
}

// Fetch возвращает изображение из кэша или загружает его из источника.
func (c *ImageCache) Fetch(ctx context.Context, url string) ([]byte, error) {
	if data, ok := c.cache.Get(url); ok {
		imageCacheHitsTotal.Inc()
		return data, nil
	}
	imageCacheMissesTotal.Inc()

	data, err := c.source.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.cache.Add(url, data)
	return data, nil
}

// Len возвращает количество записей в кэше.
func (c *ImageCache) Len() int {
	return c.cache.Len()
}
