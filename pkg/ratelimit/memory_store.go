package ratelimit

import (
	"context"
	"sync"
	"time"
)

type state struct {
	tokens     int
	lastRefill time.Time
}

// MemoryStore keeps buckets in process memory. Buckets idle for longer than
// a full refill are dropped on the next take.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*state
	swept   time.Time
	now     func() time.Time
}

type MemoryStoreOption func(*MemoryStore)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{buckets: make(map[string]*state), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Take(_ context.Context, key string, n int, cfg Config) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok {
		b = &state{tokens: cfg.Capacity, lastRefill: now}
		s.buckets[key] = b
	}

	// cap the interval count so a long idle key cannot overflow
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.lastRefill)/cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
		if b.tokens == cfg.Capacity {
			b.lastRefill = now
		}
	}

	if b.tokens >= n {
		b.tokens -= n
		s.sweep(now, cfg)
		return b.tokens, b.lastRefill.Add(cfg.RefillInterval), nil
	}
	// denied takes do not consume
	return b.tokens - n, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.buckets, key)
	s.mu.Unlock()
	return nil
}

// sweep drops buckets that would be full again, at most once per refill
// period. Caller holds s.mu.
func (s *MemoryStore) sweep(now time.Time, cfg Config) {
	full := time.Duration(cfg.Capacity/cfg.RefillRate+1) * cfg.RefillInterval
	if now.Sub(s.swept) < full {
		return
	}
	s.swept = now
	for k, b := range s.buckets {
		if now.Sub(b.lastRefill) > full {
			delete(s.buckets, k)
		}
	}
}
