package extract

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a client has used up its extraction budget.
var ErrRateLimited = errors.New("too many extraction requests")

// Limiter keeps one token bucket per client id.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewLimiter allows perMinute calls per client with a burst of the same size.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = 6
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
	}
}

// Wait fails fast with ErrRateLimited instead of queueing behind a slow model call.
func (l *Limiter) Wait(ctx context.Context, client string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !l.get(client).Allow() {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) get(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[client]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[client] = lim
	}
	return lim
}
