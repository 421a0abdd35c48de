// Package ratelimit counts requests per client key inside sliding or fixed
// time windows. Counting state lives behind the Store interface so a single
// process can keep it in memory while a multi-instance deployment shares it
// through Redis.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one counted request
type Decision struct {
	Allowed bool
	// Count is the number of requests in the current window, including this
	// one when it was allowed (sliding) or always (fixed).
	Count   int
	Limit   int
	ResetAt time.Time
}

// Remaining returns how many more requests fit in the current window
func (d Decision) Remaining() int {
	if d.Count >= d.Limit {
		return 0
	}
	return d.Limit - d.Count
}

// Store holds rate-limit counters
type Store interface {
	// SlidingWindow records a request for key unless limit requests already
	// happened less than window ago. Rejected requests are not recorded.
	SlidingWindow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)

	// FixedWindow counts every request for key in a window that starts with
	// the first request and lasts window.
	FixedWindow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// Policy names a limit applied to one class of requests
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
	// Fixed selects the fixed window algorithm instead of the sliding one.
	Fixed bool
}

// Contact and login policies
var (
	ContactPolicy = Policy{Name: "contact", Limit: 3, Window: 15 * time.Minute}
	LoginPolicy   = Policy{Name: "login", Limit: 5, Window: 15 * time.Minute, Fixed: true}
)

// Limiter applies one Policy against a Store
type Limiter struct {
	store  Store
	policy Policy
}

// NewLimiter creates a limiter for policy
func NewLimiter(store Store, policy Policy) *Limiter {
	return &Limiter{store: store, policy: policy}
}

// Policy returns the limiter's policy
func (l *Limiter) Policy() Policy {
	return l.policy
}

// Allow counts one request for client under the limiter's policy
func (l *Limiter) Allow(ctx context.Context, client string) (Decision, error) {
	key := l.policy.Name + ":" + client
	if l.policy.Fixed {
		return l.store.FixedWindow(ctx, key, l.policy.Limit, l.policy.Window)
	}
	return l.store.SlidingWindow(ctx, key, l.policy.Limit, l.policy.Window)
}
