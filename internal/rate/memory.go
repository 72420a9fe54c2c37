package rate

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es la variante in-process sobre go-cache. Sirve para
// dev y despliegues de una sola instancia; con más de una réplica usar
// RedisLimiter.
type MemoryLimiter struct {
	c      *gocache.Cache
	Max    int64
	Window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	winEnd := winStart.Add(l.Window)
	k := fmt.Sprintf("%s:%d", sanitizeKey(key), winStart.Unix())

	// Add es no-op si la clave ya existe; el Increment posterior es
	// atómico dentro de go-cache.
	_ = l.c.Add(k, int64(0), winEnd.Sub(now))
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// la clave expiró entre el Add y el Increment: reabrir ventana
		l.c.Set(k, int64(1), winEnd.Sub(now))
		hits = 1
	}
	return buildResult(hits, l.Max, winEnd.Sub(now), l.Window), nil
}
