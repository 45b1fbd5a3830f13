package ratelimit

import "time"

const (
	// DefaultLimit is the number of generations an identity may issue per window.
	DefaultLimit = 3
	// DefaultWindow is the quota window duration.
	DefaultWindow = 24 * time.Hour
)

// Record tracks one identity's usage inside its current window. A record
// past its reset time is treated as absent; stale entries are overwritten
// lazily on the next increment, there is no expiry sweep.
type Record struct {
	Count   int
	ResetAt time.Time
}

// Store persists rate-limit records keyed by identity. Implementations only
// need Get/Set; the limiter owns the window state machine, so a durable
// backing store can be substituted without touching it.
type Store interface {
	Get(identity string) (Record, bool, error)
	Set(identity string, rec Record) error
}

// Status is the outcome of a quota check.
type Status struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter enforces a fixed window of at most limit generations per identity.
//
// Check and Increment are not atomic with respect to each other: two
// concurrent Check calls for the same identity can both observe an allowance
// before either increments, letting the effective limit be exceeded under
// concurrency. Known gap, accepted for now.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter creates a Limiter with the default limit and window.
func NewLimiter(store Store) *Limiter {
	return NewLimiterWithClock(store, DefaultLimit, DefaultWindow, time.Now)
}

// NewLimiterWithClock is like NewLimiter with explicit limit, window and
// clock so tests can drive window expiry.
func NewLimiterWithClock(store Store, limit int, window time.Duration, now func() time.Time) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, now: now}
}

// Limit returns the per-window allowance.
func (l *Limiter) Limit() int {
	return l.limit
}

// Check reports whether the identity may issue another generation. It never
// mutates state. For a fresh identity (no record, or record past its reset
// time) the reported reset is hypothetical: it is not committed until
// Increment runs.
func (l *Limiter) Check(identity string) (Status, error) {
	now := l.now()

	rec, ok, err := l.store.Get(identity)
	if err != nil {
		return Status{}, err
	}

	if !ok || now.After(rec.ResetAt) {
		return Status{Allowed: true, Remaining: l.limit - 1, ResetAt: now.Add(l.window)}, nil
	}

	remaining := l.limit - rec.Count - 1
	if remaining < 0 {
		remaining = 0
	}
	return Status{Allowed: rec.Count < l.limit, Remaining: remaining, ResetAt: rec.ResetAt}, nil
}

// Increment charges one generation against the identity's quota. Callers
// must invoke it only after a successful generation so failed calls never
// consume quota. In the fresh state it commits a new record; in the active
// state it bumps the count and preserves the existing reset time.
func (l *Limiter) Increment(identity string) error {
	now := l.now()

	rec, ok, err := l.store.Get(identity)
	if err != nil {
		return err
	}

	if !ok || now.After(rec.ResetAt) {
		return l.store.Set(identity, Record{Count: 1, ResetAt: now.Add(l.window)})
	}

	rec.Count++
	return l.store.Set(identity, rec)
}
