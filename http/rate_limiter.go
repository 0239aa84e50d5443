package http

import (
	"sync"
	"time"
)

const (
	bucketIdleThreshold = 1 * time.Hour
	cleanupInterval     = 30 * time.Minute
)

type bucket struct {
	tokens     int
	refilledAt time.Time
}

// refill restores the full allowance once a window has passed since the
// last refill.
func (b *bucket) refill(now time.Time, capacity int, window time.Duration) {
	if now.Sub(b.refilledAt) >= window {
		b.tokens = capacity
		b.refilledAt = now
	}
}

// RateLimiter gives every key capacity requests per window.
type RateLimiter struct {
	mu       sync.Mutex
	capacity int
	window   time.Duration
	buckets  map[string]*bucket
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(capacity, window, time.Now)
	go rl.cleanupLoop()
	return rl
}

func newRateLimiter(capacity int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		capacity: capacity,
		window:   window,
		buckets:  make(map[string]*bucket),
		now:      now,
		done:     make(chan struct{}),
	}
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.cleanup()
		}
	}
}

// cleanup forgets keys that have not been refilled for bucketIdleThreshold.
func (r *RateLimiter) cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	before := len(r.buckets)
	for key, b := range r.buckets {
		if now.Sub(b.refilledAt) > bucketIdleThreshold {
			delete(r.buckets, key)
		}
	}
	return before - len(r.buckets)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

// Allow spends one token from the bucket of every key. When any bucket is
// empty nothing is spent and the request is refused.
func (r *RateLimiter) Allow(keys ...string) bool {
	if len(keys) == 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	charged := make([]*bucket, 0, len(keys))
	for _, key := range keys {
		b, ok := r.buckets[key]
		if !ok {
			b = &bucket{tokens: r.capacity, refilledAt: now}
			r.buckets[key] = b
		}
		b.refill(now, r.capacity, r.window)
		if b.tokens <= 0 {
			return false
		}
		charged = append(charged, b)
	}

	for _, b := range charged {
		b.tokens--
	}
	return true
}
