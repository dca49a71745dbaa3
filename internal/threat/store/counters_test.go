package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counters interface {
	RecordFailure(ctx context.Context, userID string, at time.Time, window time.Duration) (int, error)
	RecordUserForIP(ctx context.Context, ip, userID string, at time.Time, window time.Duration) (int, error)
}

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// exerciseCounters checks the window semantics every implementation shares.
func exerciseCounters(t *testing.T, c counters) {
	t.Helper()
	ctx := context.Background()
	window := 15 * time.Minute

	for i := range 4 {
		n, err := c.RecordFailure(ctx, "alice", t0.Add(time.Duration(i)*time.Minute), window)
		require.NoError(t, err)
		assert.Equal(t, i+1, n)
	}
	n, err := c.RecordFailure(ctx, "alice", t0.Add(3*time.Minute), window)
	require.NoError(t, err)
	assert.Equal(t, 5, n, "failures at the same instant all count")

	n, err = c.RecordFailure(ctx, "bob", t0, window)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "users are counted separately")

	n, err = c.RecordFailure(ctx, "alice", t0.Add(16*time.Minute), window)
	require.NoError(t, err)
	// only the failures at minutes 2, 3, 3 and 16 are inside (1m, 16m]
	assert.Equal(t, 4, n)

	for i, user := range []string{"u1", "u2", "u1", "u3"} {
		n, err = c.RecordUserForIP(ctx, "198.51.100.9", user, t0.Add(time.Duration(i)*time.Minute), window)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, n, "distinct users only")

	n, err = c.RecordUserForIP(ctx, "198.51.100.9", "u4", t0.Add(17*time.Minute), window)
	require.NoError(t, err)
	// u1 was last seen at minute 2, u2 at 1, u3 at 3; only u3 and u4 remain
	assert.Equal(t, 2, n)
}

func TestMemoryCounters(t *testing.T) {
	exerciseCounters(t, NewMemoryCounters())
}
