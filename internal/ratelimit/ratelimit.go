// Пакет ratelimit — ограничение попыток ввода пароля по ссылке.
// Две реализации: in-memory (token bucket на экземпляр) и Redis
// (фиксированное окно, общее для всех экземпляров).
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// Limiter решает, разрешена ли очередная попытка для ключа.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// memoryTableSize — максимальное число отслеживаемых ключей.
const memoryTableSize = 10000

// MemoryLimiter — token bucket на ключ, таблица ключей в LRU с TTL.
type MemoryLimiter struct {
	mu        sync.Mutex
	perMinute int
	limiters  *expirable.LRU[string, *rate.Limiter]
}

// NewMemoryLimiter создаёт лимитер на perMinute попыток в минуту на ключ.
func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	return &MemoryLimiter{
		perMinute: perMinute,
		limiters:  expirable.NewLRU[string, *rate.Limiter](memoryTableSize, nil, 10*time.Minute),
	}
}

// Allow расходует один токен ключа.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters.Get(key)
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
		l.limiters.Add(key, lim)
	}
	return lim.Allow(), nil
}
