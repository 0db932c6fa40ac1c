package calendar

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*MonthCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewMonthCache(16, time.Minute, rdb, nil), mr
}

func TestMonthKey_HidesCredential(t *testing.T) {
	key := monthKey("club-1", march2025, "secret-token")

	assert.True(t, strings.HasPrefix(key, "clubcal:month:club-1:2025-03:"))
	assert.NotContains(t, key, "secret-token")
	assert.NotEqual(t, key, monthKey("club-1", march2025, "other-token"))
}

func TestMonthCache_PutGet(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	snap := clubSnapshot()

	_, ok := cache.Get(ctx, "club-1", march2025, "tok")
	assert.False(t, ok)

	cache.Put(ctx, "tok", snap)

	got, ok := cache.Get(ctx, "club-1", march2025, "tok")
	require.True(t, ok)
	assert.Equal(t, snap.Events, got.Events)
	assert.True(t, mr.Exists(monthKey("club-1", march2025, "tok")))

	_, ok = cache.Get(ctx, "club-1", march2025, "someone-else")
	assert.False(t, ok, "snapshots are per viewer")
}

func TestMonthCache_SharedTier(t *testing.T) {
	writer, mr := newTestCache(t)
	ctx := context.Background()
	writer.Put(ctx, "tok", clubSnapshot())

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	reader := NewMonthCache(16, time.Minute, rdb, nil)

	got, ok := reader.Get(ctx, "club-1", march2025, "tok")
	require.True(t, ok)
	assert.Equal(t, march2025, got.Month)
	assert.Equal(t, clubSnapshot().Events, got.Events)
	assert.Equal(t, clubSnapshot().BlockedWeekends, got.BlockedWeekends)
}

func TestMonthCache_LocalOnly(t *testing.T) {
	cache := NewMonthCache(16, time.Minute, nil, nil)
	ctx := context.Background()
	snap := clubSnapshot()

	cache.Put(ctx, "tok", snap)
	got, ok := cache.Get(ctx, "club-1", march2025, "tok")
	require.True(t, ok)
	assert.Same(t, snap, got)

	cache.Invalidate(ctx, "club-1", march2025)
	_, ok = cache.Get(ctx, "club-1", march2025, "tok")
	assert.False(t, ok)
}

func TestMonthCache_InvalidateReachesOtherInstances(t *testing.T) {
	a, mr := newTestCache(t)
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	b := NewMonthCache(16, time.Minute, rdb, nil)

	a.Put(ctx, "tok", clubSnapshot())
	_, ok := b.Get(ctx, "club-1", march2025, "tok")
	require.True(t, ok)

	a.Invalidate(ctx, "club-1", march2025)

	_, ok = b.Get(ctx, "club-1", march2025, "tok")
	assert.False(t, ok, "an event created through one instance shows on every instance")
}

func TestMonthCache_SkipsDegraded(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	snap := clubSnapshot()
	snap.Degraded = []string{CollectionHolidays}

	cache.Put(ctx, "tok", snap)

	_, ok := cache.Get(ctx, "club-1", march2025, "tok")
	assert.False(t, ok)
	assert.Empty(t, mr.Keys())
}

func TestMonthCache_Invalidate(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "a", clubSnapshot())
	cache.Put(ctx, "b", clubSnapshot())
	april := clubSnapshot()
	april.Month = march2025.Next()
	cache.Put(ctx, "a", april)

	cache.Invalidate(ctx, "club-1", march2025)

	_, ok := cache.Get(ctx, "club-1", march2025, "a")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "club-1", march2025, "b")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "club-1", march2025.Next(), "a")
	assert.True(t, ok, "other months survive")
	assert.Len(t, mr.Keys(), 1)
}

func TestMonthCache_NilIsDisabled(t *testing.T) {
	var cache *MonthCache
	ctx := context.Background()

	cache.Put(ctx, "tok", clubSnapshot())
	cache.Invalidate(ctx, "club-1", march2025)
	_, ok := cache.Get(ctx, "club-1", march2025, "tok")
	assert.False(t, ok)
}
