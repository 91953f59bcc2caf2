// Package ratelimit provides fixed window request limiting.
//
// A Policy is an ordered list of windows that must all admit a request.
// Each window counts the event and then checks the limit, so a denied
// request still uses budget in the wider windows evaluated before the one
// that rejected it. Counters are scoped by key plus the window's limit and
// period; callers fold every identity that must not share a bucket into
// the key (the HTTP server keys by client address and route).
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Window is one fixed counting window: at most Limit events per Period.
type Window struct {
	Limit  int64
	Period time.Duration
}

// String renders the conventional "100 per 1 hour" notation.
func (w Window) String() string {
	return fmt.Sprintf("%d per %s", w.Limit, periodName(w.Period))
}

func periodName(d time.Duration) string {
	switch d {
	case 24 * time.Hour:
		return "1 day"
	case time.Hour:
		return "1 hour"
	case time.Minute:
		return "1 minute"
	case time.Second:
		return "1 second"
	}
	return d.String()
}

// Policy is the ordered set of windows applied to one route.
type Policy []Window

// PerDay is a convenience constructor for day windows.
func PerDay(n int64) Window { return Window{Limit: n, Period: 24 * time.Hour} }

// PerHour is a convenience constructor for hour windows.
func PerHour(n int64) Window { return Window{Limit: n, Period: time.Hour} }

// PerMinute is a convenience constructor for minute windows.
func PerMinute(n int64) Window { return Window{Limit: n, Period: time.Minute} }

// Decision captures the evaluated outcome for one key.
type Decision struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
	Window     Window // the window that produced the decision
}

// Store counts events per (key, window) pair; windows differing in limit
// or period never share a counter. Implementations must be safe for
// concurrent use; Take atomically counts one event and decides admission.
type Store interface {
	Take(ctx context.Context, key string, w Window, now time.Time) Decision
}

// Limiter evaluates route policies against a store.
type Limiter struct {
	store Store
}

// New builds a limiter on top of a store.
func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check counts one event for key against every window of the policy, in
// order, and returns the decision of the first window that rejects, or the
// last window's decision when all admit. An empty policy always admits.
func (l *Limiter) Check(ctx context.Context, key string, policy Policy, now time.Time) Decision {
	d := Decision{Allowed: true}
	for _, w := range policy {
		d = l.store.Take(ctx, key, w, now)
		if !d.Allowed {
			return d
		}
	}
	return d
}
