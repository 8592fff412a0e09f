// Package rate throttles actions per key, such as OTP requests per phone.
package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter holds one token bucket per key. Buckets idle for longer than
// Expiry are dropped by a janitor goroutine until Stop is called.
type Limiter struct {
	Expiry   time.Duration
	Burst    int
	Interval time.Duration

	mu      sync.Mutex
	keys    map[string]*keyLimiter
	stop    chan struct{}
	stopped sync.Once
}

type keyLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLimiter allows burst actions per key at once, refilled at one every
// interval.
func NewLimiter(burst int, interval time.Duration, expiry time.Duration) *Limiter {
	l := Limiter{
		Expiry:   expiry,
		Burst:    burst,
		Interval: interval,
		keys:     make(map[string]*keyLimiter),
		stop:     make(chan struct{}),
	}
	go l.janitor()
	return &l
}

// Allow reports whether the action for key may happen now, consuming a token
// when it does.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.keys[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(rate.Every(l.Interval), l.Burst)}
		l.keys[key] = kl
	}
	kl.lastAccess = time.Now()

	return kl.limiter.Allow()
}

func (l *Limiter) Stop() {
	l.stopped.Do(func() { close(l.stop) })
}

func (l *Limiter) janitor() {
	period := l.Expiry
	if period <= 0 || period > time.Minute {
		period = time.Minute
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evict(time.Now())
		}
	}
}

func (l *Limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, kl := range l.keys {
		if now.Sub(kl.lastAccess) > l.Expiry {
			delete(l.keys, key)
		}
	}
}
