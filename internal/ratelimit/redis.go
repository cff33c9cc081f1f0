// redis.go — лимитер попыток в Redis (INCR + EXPIRE, окно в одну минуту).
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix — префикс ключей счётчиков попыток.
const keyPrefix = "sm:pwd-attempts:"

// RedisLimiter — фиксированное окно в одну минуту, общее для всех экземпляров.
type RedisLimiter struct {
	client    redis.UniversalClient
	perMinute int
	window    time.Duration
}

// NewRedisLimiter создаёт лимитер поверх готового клиента Redis.
func NewRedisLimiter(client redis.UniversalClient, perMinute int) *RedisLimiter {
	return &RedisLimiter{client: client, perMinute: perMinute, window: time.Minute}
}

// Allow увеличивает счётчик окна и сравнивает его с лимитом.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := keyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: счётчик попыток: %w", err)
	}
	return incr.Val() <= int64(l.perMinute), nil
}

// CheckReady проверяет доступность Redis для health endpoint.
func (l *RedisLimiter) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := l.client.Ping(ctx).Err(); err != nil {
		return "fail", fmt.Sprintf("Redis недоступен: %v", err)
	}
	return "ok", "подключение активно"
}
