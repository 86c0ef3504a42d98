package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterKey struct {
	chatID int64
	userID int64
}

// IntervalLimiter enforces a minimum interval between interactive summaries
// per (chat, caller). Requests inside the window are rejected with the
// remaining wait, never queued.
type IntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	limiters map[limiterKey]*rate.Limiter
}

func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		interval: interval,
		limiters: make(map[limiterKey]*rate.Limiter),
	}
}

// Wait returns zero when the request may proceed, otherwise the time the
// caller has to wait. A rejected request does not extend the window.
func (l *IntervalLimiter) Wait(chatID, userID int64) time.Duration {
	l.mu.Lock()
	key := limiterKey{chatID: chatID, userID: userID}
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.interval), 1)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	r := lim.Reserve()
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return d
	}
	return 0
}
