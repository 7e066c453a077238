package aggregator_test

import (
	"context"
	"strconv"
	"sync"
	"time"

	agg "github.com/vonm84/qah-app/internal/aggregator"
)

// fakeKVStore 仅用于单元测试（内存 KV + TTL）
type fakeKVStore struct {
	mu   sync.Mutex
	data map[string]fakeKVItem
}

type fakeKVItem struct {
	value   string
	expires time.Time // zero = no ttl
}

func newFakeKVStore() *fakeKVStore {
	return &fakeKVStore{
		data: make(map[string]fakeKVItem),
	}
}

func (f *fakeKVStore) getLocked(key string) (string, bool) {
	item, ok := f.data[key]
	if !ok {
		return "", false
	}
	if !item.expires.IsZero() && time.Now().After(item.expires) {
		delete(f.data, key)
		return "", false
	}
	return item.value, true
}

func (f *fakeKVStore) setLocked(key, value string, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	f.data[key] = fakeKVItem{value: value, expires: exp}
}

func (f *fakeKVStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.getLocked(key)
	if !ok {
		return "", agg.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeKVStore) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, _ := f.getLocked(key)
	n, _ := strconv.ParseInt(v, 10, 64)
	n++
	f.setLocked(key, strconv.FormatInt(n, 10), 0)
	return n, nil
}

func (f *fakeKVStore) SetIfNewer(ctx context.Context, key, genKey string, generation int64, value string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, _ := f.getLocked(genKey)
	current, _ := strconv.ParseInt(v, 10, 64)
	if generation <= current {
		return false, nil
	}
	f.setLocked(key, value, ttl)
	f.setLocked(genKey, strconv.FormatInt(generation, 10), ttl)
	return true, nil
}
