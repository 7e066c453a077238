package aggregator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	agg "github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/domain"
)

func snapshot(gen int64, dates ...string) *agg.RosterSnapshot {
	s := &agg.RosterSnapshot{Generation: gen, Today: domain.MustParseDate("2024-03-05"), BuiltAt: time.Now().UTC()}
	for _, d := range dates {
		s.Dates = append(s.Dates, agg.DateRoster{Date: domain.MustParseDate(d), Songs: []agg.SongRoster{}})
	}
	return s
}

func TestSnapshotCache_StaleCommitDiscarded(t *testing.T) {
	ctx := context.Background()
	cache := agg.NewSnapshotCache(newFakeKVStore(), 0, zap.NewNop())

	older, err := cache.NextGeneration(ctx)
	require.NoError(t, err)
	newer, err := cache.NextGeneration(ctx)
	require.NoError(t, err)
	assert.Greater(t, newer, older)

	ok, err := cache.Commit(ctx, snapshot(newer, "2024-03-12"))
	require.NoError(t, err)
	assert.True(t, ok)

	// the older fetch finishes late
	ok, err = cache.Commit(ctx, snapshot(older, "2024-03-05"))
	require.NoError(t, err)
	assert.False(t, ok)

	latest, err := cache.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer, latest.Generation)
	require.Len(t, latest.Dates, 1)
	assert.Equal(t, "2024-03-12", latest.Dates[0].Date.String())
}

func TestSnapshotCache_SharedStoreAcrossProcesses(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKVStore()
	a := agg.NewSnapshotCache(kv, 0, zap.NewNop())
	b := agg.NewSnapshotCache(kv, 0, zap.NewNop())

	genA, _ := a.NextGeneration(ctx)
	genB, _ := b.NextGeneration(ctx)

	ok, err := b.Commit(ctx, snapshot(genB))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Commit(ctx, snapshot(genA))
	require.NoError(t, err)
	assert.False(t, ok)
}

// flakyKVStore fails the next SetIfNewer calls while failures > 0.
type flakyKVStore struct {
	*fakeKVStore
	failures int
}

func (f *flakyKVStore) SetIfNewer(ctx context.Context, key, genKey string, generation int64, value string, ttl time.Duration) (bool, error) {
	if f.failures > 0 {
		f.failures--
		return false, errors.New("connection reset")
	}
	return f.fakeKVStore.SetIfNewer(ctx, key, genKey, generation, value, ttl)
}

func TestSnapshotCache_FailedWriteDoesNotAdvanceGeneration(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKVStore{fakeKVStore: newFakeKVStore(), failures: 1}
	cache := agg.NewSnapshotCache(kv, 0, zap.NewNop())

	gen, err := cache.NextGeneration(ctx)
	require.NoError(t, err)

	ok, err := cache.Commit(ctx, snapshot(gen, "2024-03-05"))
	require.Error(t, err)
	assert.False(t, ok)
	_, err = cache.Latest(ctx)
	assert.ErrorIs(t, err, agg.ErrCacheMiss)

	// 同一 generation 重试仍可提交
	ok, err = cache.Commit(ctx, snapshot(gen, "2024-03-05"))
	require.NoError(t, err)
	assert.True(t, ok)

	latest, err := cache.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen, latest.Generation)

	ok, err = cache.Commit(ctx, snapshot(gen))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotCache_LatestMiss(t *testing.T) {
	cache := agg.NewSnapshotCache(newFakeKVStore(), 0, zap.NewNop())
	_, err := cache.Latest(context.Background())
	assert.ErrorIs(t, err, agg.ErrCacheMiss)
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisKVStore_SetIfNewer(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	kv := agg.NewRedisKVStore(client)

	ok, err := kv.SetIfNewer(ctx, "v", "g", 2, "second", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = kv.SetIfNewer(ctx, "v", "g", 1, "first", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := kv.Get(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, "second", v)

	ok, err = kv.SetIfNewer(ctx, "v", "g", 3, "third", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Greater(t, mr.TTL("v"), time.Duration(0))

	_, err = kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, agg.ErrCacheMiss)
}

func TestRedisKVStore_Incr(t *testing.T) {
	ctx := context.Background()
	_, client := setupTestRedis(t)
	kv := agg.NewRedisKVStore(client)

	n1, err := kv.Incr(ctx, "counter")
	require.NoError(t, err)
	n2, err := kv.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n1)
	assert.Equal(t, int64(2), n2)
}
