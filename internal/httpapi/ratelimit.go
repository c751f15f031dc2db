package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterStore holds one token bucket per client key. Idle buckets
// are never actively evicted here; the expected scale does not
// warrant a sweep goroutine, and the map is bounded by distinct
// callers over the server's lifetime.
type limiterStore struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
}

func newLimiterStore(perMinute int) *limiterStore {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &limiterStore{
		buckets: make(map[string]*rate.Limiter),
		rps:     rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	l, ok := s.buckets[key]
	if !ok {
		l = rate.NewLimiter(s.rps, s.burst)
		s.buckets[key] = l
	}
	s.mu.Unlock()
	return l.AllowN(time.Now(), 1)
}
