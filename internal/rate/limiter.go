// Package rate implementa rate limiting de ventana fija para las rutas
// sensibles (login, forgot-password). Backend Redis para despliegues
// multi-instancia, go-cache en memoria para single-node/dev.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result describe el estado de la ventana para la clave consultada.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func sanitizeKey(key string) string {
	return strings.ReplaceAll(key, " ", "_")
}

func buildResult(hits, max int64, left time.Duration, window time.Duration) Result {
	remaining := max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= max,
		Remaining:   remaining,
		CurrentHits: hits,
	}
	if !res.Allowed {
		res.RetryAfter = left
		if res.RetryAfter <= 0 {
			res.RetryAfter = window
		}
	}
	return res
}

// RedisLimiter cuenta hits por ventana con INCR + EXPIRE. La clave
// incluye el inicio de ventana, así expira sola y no hay que resetear.
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	winStart := time.Now().UTC().Truncate(l.Window)
	rk := fmt.Sprintf("%s%s:%d", l.Prefix, sanitizeKey(key), winStart.Unix())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	ttl := pipe.TTL(ctx, rk)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	// primer hit de la ventana: fijar expiry
	if incr.Val() == 1 {
		_ = l.Client.Expire(ctx, rk, l.Window).Err()
		ttl = l.Client.TTL(ctx, rk)
	}
	return buildResult(incr.Val(), l.Max, ttl.Val(), l.Window), nil
}
