package ratelimit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a clock pinned to t that tests can advance.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*Limiter, *fixedClock) {
	clock := &fixedClock{t: time.Unix(1700000000, 0)}
	return NewLimiterWithClock(NewMemoryStore(), DefaultLimit, DefaultWindow, clock.Now), clock
}

func TestCheckFreshIdentity(t *testing.T) {
	limiter, clock := newTestLimiter()

	status, err := limiter.Check("user-a")
	require.NoError(t, err)

	assert.True(t, status.Allowed)
	assert.Equal(t, DefaultLimit-1, status.Remaining)
	assert.Equal(t, clock.Now().Add(DefaultWindow), status.ResetAt)
}

func TestCheckDoesNotMutate(t *testing.T) {
	limiter, _ := newTestLimiter()

	for i := 0; i < 10; i++ {
		status, err := limiter.Check("user-a")
		require.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, DefaultLimit-1, status.Remaining)
	}
}

func TestLimitExhaustion(t *testing.T) {
	limiter, _ := newTestLimiter()

	for i := 0; i < DefaultLimit; i++ {
		status, err := limiter.Check("user-a")
		require.NoError(t, err)
		require.True(t, status.Allowed, "request %d should be allowed", i+1)
		require.NoError(t, limiter.Increment("user-a"))
	}

	status, err := limiter.Check("user-a")
	require.NoError(t, err)
	assert.False(t, status.Allowed)
	assert.Equal(t, 0, status.Remaining)
}

func TestRemainingCountsDown(t *testing.T) {
	limiter, _ := newTestLimiter()

	require.NoError(t, limiter.Increment("user-a"))
	status, err := limiter.Check("user-a")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 1, status.Remaining)

	require.NoError(t, limiter.Increment("user-a"))
	status, err = limiter.Check("user-a")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 0, status.Remaining)
}

func TestWindowExpiry(t *testing.T) {
	limiter, clock := newTestLimiter()

	for i := 0; i < DefaultLimit; i++ {
		require.NoError(t, limiter.Increment("user-a"))
	}
	status, err := limiter.Check("user-a")
	require.NoError(t, err)
	require.False(t, status.Allowed)

	clock.Advance(DefaultWindow + time.Second)

	status, err = limiter.Check("user-a")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, DefaultLimit-1, status.Remaining)
	assert.Equal(t, clock.Now().Add(DefaultWindow), status.ResetAt)
}

func TestIncrementPreservesResetTime(t *testing.T) {
	limiter, clock := newTestLimiter()

	require.NoError(t, limiter.Increment("user-a"))
	first, err := limiter.Check("user-a")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	require.NoError(t, limiter.Increment("user-a"))

	second, err := limiter.Check("user-a")
	require.NoError(t, err)
	assert.Equal(t, first.ResetAt, second.ResetAt)
}

func TestIdentitiesAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter()

	for i := 0; i < DefaultLimit; i++ {
		require.NoError(t, limiter.Increment("user-a"))
	}

	status, err := limiter.Check("user-b")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, DefaultLimit-1, status.Remaining)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate_limits.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)

	// Whole seconds because the store persists reset times at second granularity.
	resetAt := time.Unix(1700086400, 0)

	t.Run("MissingIdentity", func(t *testing.T) {
		_, ok, err := store.Get("nobody")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		require.NoError(t, store.Set("user-a", Record{Count: 2, ResetAt: resetAt}))

		rec, ok, err := store.Get("user-a")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 2, rec.Count)
		assert.True(t, rec.ResetAt.Equal(resetAt))
	})

	t.Run("Upsert", func(t *testing.T) {
		require.NoError(t, store.Set("user-a", Record{Count: 3, ResetAt: resetAt}))

		rec, _, err := store.Get("user-a")
		require.NoError(t, err)
		assert.Equal(t, 3, rec.Count)
	})

	t.Run("SurvivesReopen", func(t *testing.T) {
		require.NoError(t, store.Close())

		reopened, err := NewSQLiteStore(path)
		require.NoError(t, err)
		defer reopened.Close()

		rec, ok, err := reopened.Get("user-a")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 3, rec.Count)
		assert.True(t, rec.ResetAt.Equal(resetAt))
	})
}

func TestLimiterWithSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "rate_limits.db"))
	require.NoError(t, err)
	defer store.Close()

	clock := &fixedClock{t: time.Unix(1700000000, 0)}
	limiter := NewLimiterWithClock(store, DefaultLimit, DefaultWindow, clock.Now)

	for i := 0; i < DefaultLimit; i++ {
		require.NoError(t, limiter.Increment("user-a"))
	}

	status, err := limiter.Check("user-a")
	require.NoError(t, err)
	assert.False(t, status.Allowed)
	assert.Equal(t, 0, status.Remaining)
}
