package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var testNow = time.Date(2026, 1, 15, 12, 30, 15, 0, time.UTC)

func TestWindowString(t *testing.T) {
	tests := []struct {
		w    Window
		want string
	}{
		{PerMinute(10), "10 per 1 minute"},
		{PerHour(100), "100 per 1 hour"},
		{PerDay(200), "200 per 1 day"},
		{Window{Limit: 5, Period: 30 * time.Second}, "5 per 30s"},
	}
	for _, tt := range tests {
		if got := tt.w.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMemoryStoreTake(t *testing.T) {
	s := NewMemoryStore()
	w := PerMinute(3)

	for i := 0; i < 3; i++ {
		d := s.Take(context.Background(), "1.2.3.4", w, testNow)
		if !d.Allowed {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
		if d.Remaining != int64(2-i) {
			t.Errorf("request %d remaining = %d, want %d", i+1, d.Remaining, 2-i)
		}
	}

	d := s.Take(context.Background(), "1.2.3.4", w, testNow)
	if d.Allowed {
		t.Fatal("4th request allowed, want denied")
	}
	if d.RetryAfter != 45*time.Second {
		t.Errorf("RetryAfter = %v, want 45s", d.RetryAfter)
	}
	if d.Window != w {
		t.Errorf("decision window = %v, want %v", d.Window, w)
	}
}

func TestMemoryStoreWindowRollover(t *testing.T) {
	s := NewMemoryStore()
	w := PerMinute(1)

	if d := s.Take(context.Background(), "k", w, testNow); !d.Allowed {
		t.Fatal("first request denied")
	}
	if d := s.Take(context.Background(), "k", w, testNow); d.Allowed {
		t.Fatal("second request in same window allowed")
	}

	next := testNow.Add(time.Minute)
	if d := s.Take(context.Background(), "k", w, next); !d.Allowed {
		t.Fatal("request after rollover denied")
	}
}

func TestMemoryStoreKeyIsolation(t *testing.T) {
	s := NewMemoryStore()
	w := PerMinute(1)

	if d := s.Take(context.Background(), "10.0.0.1", w, testNow); !d.Allowed {
		t.Fatal("first client denied")
	}
	if d := s.Take(context.Background(), "10.0.0.1", w, testNow); d.Allowed {
		t.Fatal("first client not exhausted")
	}
	if d := s.Take(context.Background(), "10.0.0.2", w, testNow); !d.Allowed {
		t.Fatal("second client denied by first client's counter")
	}
}

// Same key and window must admit exactly Limit events under concurrency.
func TestMemoryStoreConcurrent(t *testing.T) {
	s := NewMemoryStore()
	w := PerMinute(10)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d := s.Take(context.Background(), "burst", w, testNow); d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 10 {
		t.Errorf("allowed = %d, want exactly 10", got)
	}
}

func TestLimiterCheckPolicyOrder(t *testing.T) {
	s := NewMemoryStore()
	l := New(s)
	policy := Policy{PerDay(200), PerHour(2)}

	for i := 0; i < 2; i++ {
		if d := l.Check(context.Background(), "c", policy, testNow); !d.Allowed {
			t.Fatalf("request %d denied", i+1)
		}
	}
	d := l.Check(context.Background(), "c", policy, testNow)
	if d.Allowed {
		t.Fatal("3rd request allowed, want hourly rejection")
	}
	if d.Window.Period != time.Hour {
		t.Errorf("rejecting window period = %v, want 1h", d.Window.Period)
	}
	// The wider window counted the denied request too.
	if used := counterUsed(s, "c", PerDay(200)); used != 3 {
		t.Errorf("day counter used = %d, want 3", used)
	}
}

func counterUsed(s *MemoryStore, key string, w Window) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counters[key+"|"+w.String()]
	if c == nil {
		return -1
	}
	return c.used
}

func TestLimiterCheckStopsAtRejection(t *testing.T) {
	s := NewMemoryStore()
	l := New(s)
	policy := Policy{PerHour(1), PerDay(10)}

	l.Check(context.Background(), "c", policy, testNow)
	l.Check(context.Background(), "c", policy, testNow) // denied by hour window

	if used := counterUsed(s, "c", PerDay(10)); used != 1 {
		t.Errorf("day counter used = %d, want 1 (denied request must not reach it)", used)
	}
}

// Windows that share a period but not a limit keep separate counters for
// the same key.
func TestMemoryStorePerWindowCounters(t *testing.T) {
	s := NewMemoryStore()

	for i := 0; i < 50; i++ {
		if d := s.Take(context.Background(), "1.2.3.4", PerHour(100), testNow); !d.Allowed {
			t.Fatalf("request %d denied under the 100/hour window", i+1)
		}
	}

	d := s.Take(context.Background(), "1.2.3.4", PerHour(50), testNow)
	if !d.Allowed {
		t.Fatalf("first event in the 50/hour window denied, remaining = %d", d.Remaining)
	}
	if d.Remaining != 49 {
		t.Errorf("50/hour remaining = %d, want 49", d.Remaining)
	}
}

// Denied events keep counting inside their window; admission depends on the
// event landing within the limit, not on the counter staying at it.
func TestMemoryStoreAttemptCounting(t *testing.T) {
	s := NewMemoryStore()
	w := PerMinute(2)

	for i := 0; i < 4; i++ {
		s.Take(context.Background(), "k", w, testNow)
	}
	if used := counterUsed(s, "k", w); used != 4 {
		t.Errorf("counter = %d, want 4 attempts recorded", used)
	}
	if d := s.Take(context.Background(), "k", w, testNow); d.Allowed || d.Remaining != 0 {
		t.Errorf("5th event: allowed = %v remaining = %d, want denied with 0 remaining", d.Allowed, d.Remaining)
	}
}

func TestLimiterEmptyPolicy(t *testing.T) {
	l := New(NewMemoryStore())
	for i := 0; i < 50; i++ {
		if d := l.Check(context.Background(), "c", nil, testNow); !d.Allowed {
			t.Fatalf("empty policy denied request %d", i+1)
		}
	}
}
