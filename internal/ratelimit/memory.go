package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter keeps one token bucket per client, refilled at perMinute per Window.
type MemoryLimiter struct {
	mu        sync.Mutex
	perMinute int
	clients   map[string]*memoryClient
	lastSweep time.Time
	now       func() time.Time
}

type memoryClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter creates a limiter. A nil clock uses time.Now.
func NewMemoryLimiter(perMinute int, now func() time.Time) *MemoryLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		perMinute: perMinute,
		clients:   make(map[string]*memoryClient),
		now:       now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > Window {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > Window {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &memoryClient{
			limiter: rate.NewLimiter(rate.Every(Window/time.Duration(l.perMinute)), l.perMinute),
		}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1), nil
}

// Clients returns the number of tracked clients.
func (l *MemoryLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
