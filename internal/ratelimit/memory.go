package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps fixed window counters in process memory. Counters are
// created lazily, reset when their window rolls over, and swept periodically
// so idle clients do not accumulate.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
}

type windowCounter struct {
	windowStart time.Time
	period      time.Duration
	used        int64
}

// NewMemoryStore builds an in-process store and starts its sweep loop.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{counters: make(map[string]*windowCounter)}
	go s.sweepLoop(10 * time.Minute)
	return s
}

// Take counts the event for (key, w) under one lock and admits it when it
// lands within the limit, so concurrent bursts cannot over-admit. Denied
// events keep counting; rollover resets the counter. The counter key
// carries the window's limit and period, so windows that happen to share a
// period still count apart.
func (s *MemoryStore) Take(_ context.Context, key string, w Window, now time.Time) Decision {
	windowStart := now.Truncate(w.Period)

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key + "|" + w.String()
	counter := s.counters[k]
	if counter == nil {
		counter = &windowCounter{windowStart: windowStart, period: w.Period}
		s.counters[k] = counter
	}
	if !counter.windowStart.Equal(windowStart) {
		counter.windowStart = windowStart
		counter.used = 0
	}

	counter.used++
	allowed := counter.used <= w.Limit
	remaining := w.Limit - counter.used
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{Allowed: allowed, Limit: w.Limit, Remaining: remaining, Window: w}
	if !allowed {
		d.RetryAfter = windowStart.Add(w.Period).Sub(now)
	}
	return d
}

// sweepLoop periodically drops counters whose window has expired.
func (s *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for k, c := range s.counters {
			if now.After(c.windowStart.Add(c.period)) {
				delete(s.counters, k)
			}
		}
		s.mu.Unlock()
	}
}
