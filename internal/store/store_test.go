package store_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldtechnologies/linkdrop/internal/store"
)

// kvFactory builds a fresh store plus a function that moves its clock forward.
type kvFactory func(t *testing.T) (store.KV, func(time.Duration))

func redisFactory(t *testing.T) (store.KV, func(time.Duration)) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := store.NewRedisStore(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr.FastForward
}

func memoryFactory(t *testing.T) (store.KV, func(time.Duration)) {
	t.Helper()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	s := store.NewMemoryStore()
	s.SetClock(func() time.Time { return now })

	return s, func(d time.Duration) { now = now.Add(d) }
}

func forEachStore(t *testing.T, fn func(t *testing.T, kv store.KV, advance func(time.Duration))) {
	factories := map[string]kvFactory{
		"redis":  redisFactory,
		"memory": memoryFactory,
	}
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			kv, advance := factory(t)
			fn(t, kv, advance)
		})
	}
}

func TestKV_GetMissingKey(t *testing.T) {
	forEachStore(t, func(t *testing.T, kv store.KV, _ func(time.Duration)) {
		value, found, err := kv.Get(context.Background(), "topic:1:closed")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})
}

func TestKV_SetWithExpiry(t *testing.T) {
	forEachStore(t, func(t *testing.T, kv store.KV, advance func(time.Duration)) {
		ctx := context.Background()
		key := store.TopicClosedKey(42)

		require.NoError(t, kv.Set(ctx, key, "true", 30*24*time.Hour))

		value, found, err := kv.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "true", value)

		ttl, err := kv.TTL(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, 2592000*time.Second, ttl)

		advance(30*24*time.Hour + time.Second)

		_, found, err = kv.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found)

		ttl, err = kv.TTL(ctx, key)
		require.NoError(t, err)
		assert.Negative(t, ttl)
	})
}

func TestKV_SetWithoutExpiry(t *testing.T) {
	forEachStore(t, func(t *testing.T, kv store.KV, _ func(time.Duration)) {
		ctx := context.Background()
		require.NoError(t, kv.Set(ctx, "k", "v", 0))

		ttl, err := kv.TTL(ctx, "k")
		require.NoError(t, err)
		assert.Zero(t, ttl)
	})
}

func TestKV_SetAddDeduplicates(t *testing.T) {
	forEachStore(t, func(t *testing.T, kv store.KV, _ func(time.Duration)) {
		ctx := context.Background()
		key := store.DailyLinksKey(42, "2026-10-18")

		added, err := kv.SetAdd(ctx, key, "https://a.com", "https://b.com/x")
		require.NoError(t, err)
		assert.Equal(t, int64(2), added)

		added, err = kv.SetAdd(ctx, key, "https://b.com/x", "https://c.com", "https://c.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), added)

		members, err := kv.SetMembers(ctx, key)
		require.NoError(t, err)
		sort.Strings(members)
		assert.Equal(t, []string{"https://a.com", "https://b.com/x", "https://c.com"}, members)
	})
}

func TestKV_SetAddNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, kv store.KV, _ func(time.Duration)) {
		ctx := context.Background()

		added, err := kv.SetAdd(ctx, "links:1:2026-10-18")
		require.NoError(t, err)
		assert.Zero(t, added)

		members, err := kv.SetMembers(ctx, "links:1:2026-10-18")
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}

func TestKV_GetOnSetIsError(t *testing.T) {
	forEachStore(t, func(t *testing.T, kv store.KV, _ func(time.Duration)) {
		ctx := context.Background()
		_, err := kv.SetAdd(ctx, "mixed", "a")
		require.NoError(t, err)

		_, _, err = kv.Get(ctx, "mixed")
		assert.Error(t, err)
	})
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := store.NewRedisStore(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer s.Close()

	mr.Close()

	_, _, err = s.Get(context.Background(), "topic:1:closed")
	assert.Error(t, err)
	assert.Error(t, s.Ping(context.Background()))
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := store.NewRedisStore(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "topic:-100123:closed", store.TopicClosedKey(-100123))
	assert.Equal(t, "links:42:2026-10-18", store.DailyLinksKey(42, "2026-10-18"))

	// 23:30 in UTC-5 is already the next UTC day
	local := time.Date(2026, 10, 18, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "2026-10-19", store.DateKey(local))

	_, err := store.ParseDateKey("2026-10-18")
	assert.NoError(t, err)
	_, err = store.ParseDateKey("18/10/2026")
	assert.Error(t, err)
}
