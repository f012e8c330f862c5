package server

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 5 * time.Minute

// loginLimiter throttles login attempts per client key (IP + username).
type loginLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
	nowFunc     func() time.Time
}

func newLoginLimiter(requests int, window time.Duration, burst int) *loginLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if burst <= 0 {
		burst = requests
	}
	return &loginLimiter{
		rate:        rate.Limit(float64(requests) / window.Seconds()),
		burst:       burst,
		lastCleanup: time.Now(),
		nowFunc:     time.Now,
	}
}

// allow consumes one attempt for key. When the key is exhausted it reports how
// long the client should wait, rounded up to whole seconds.
func (l *loginLimiter) allow(key string) (bool, time.Duration) {
	limiter := l.limiter(key)
	now := l.nowFunc()

	if limiter.AllowN(now, 1) {
		return true, 0
	}

	reservation := limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	reservation.CancelAt(now)
	return false, max(delay.Round(time.Second), time.Second)
}

func (l *loginLimiter) limiter(key string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	actual, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	l.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket has refilled, they carry no state.
func (l *loginLimiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	if now.Sub(l.lastCleanup) < limiterCleanupInterval {
		return
	}
	l.lastCleanup = now

	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).TokensAt(now) >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

func retryAfterHeader(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}
