// Package ratelimit bounds how many requests one client may make per minute.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited is returned when a client exceeded its budget.
var ErrRateLimited = errors.New("rate limited")

// Window is the sampling window for per-client limits.
const Window = time.Minute

// Limiter decides whether a request from key may proceed. Counting is best
// effort: backends may admit slightly more than the limit under contention.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
