// Package ratex implements a sliding-window rate limiter: each identity key
// keeps the timestamps of its requests over the trailing window, so the
// count is exact rather than bucketed. State lives in an injected Store;
// separate limiters with separate stores share nothing.
package ratex

import (
	"time"
)

// Defaults applied when New is given non-positive values.
const (
	DefaultMax    = 100
	DefaultWindow = time.Minute
)

// Decision is the outcome of one rate-limit check. Limit, Remaining, and
// ResetAt are populated on every decision; RetryAfter only when denied.
type Decision struct {
	Allowed bool

	// Limit is the configured maximum for the window.
	Limit int

	// Remaining is how many further requests the key may make now.
	Remaining int

	// ResetAt is when a fully exhausted window would be clear again,
	// emitted as X-RateLimit-Reset in epoch milliseconds.
	ResetAt time.Time

	// RetryAfter is the whole-second wait (rounded up) until the oldest
	// retained request leaves the window. Zero when allowed.
	RetryAfter int
}

// Limiter applies a max-requests-per-window policy per key.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the limiter's time source. Tests use this to move
// through the window without sleeping.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New builds a Limiter over store. Non-positive max or window fall back to
// the defaults (100 requests per 60s).
func New(store Store, max int, window time.Duration, opts ...Option) *Limiter {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}

	l := &Limiter{
		store:  store,
		max:    max,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records one request for key if the key has capacity left in the
// trailing window and reports the decision. A denied request is NOT
// recorded: being over the limit must not push the recovery point further
// out. Prune, check, and append all happen under the store's per-key lock.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()
	nowMs := now.UnixMilli()
	cutoff := nowMs - l.window.Milliseconds()

	var d Decision
	l.store.Update(key, func(ts []int64) []int64 {
		drop := 0
		for drop < len(ts) && ts[drop] <= cutoff {
			drop++
		}
		ts = ts[drop:]

		if len(ts) >= l.max {
			waitMs := ts[0] + l.window.Milliseconds() - nowMs
			d = Decision{
				Allowed:    false,
				Limit:      l.max,
				Remaining:  0,
				ResetAt:    now.Add(l.window),
				RetryAfter: int((waitMs + 999) / 1000),
			}
			return ts
		}

		ts = append(ts, nowMs)
		d = Decision{
			Allowed:   true,
			Limit:     l.max,
			Remaining: l.max - len(ts),
			ResetAt:   now.Add(l.window),
		}
		return ts
	})
	return d
}

// Sweep evicts keys that have been idle for at least the window, bounding
// store growth under many distinct identities. Intended to run on a
// housekeeping ticker; correctness does not depend on it because pruning
// and empty-key eviction already happen lazily per request.
func (l *Limiter) Sweep() {
	l.store.Sweep(l.now().UnixMilli() - l.window.Milliseconds())
}
