package aggregator

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss 表示缓存不存在
var ErrCacheMiss = errors.New("cache miss")

// KVStore 抽象的 KV 存储（用于在单元测试中替换 Redis）
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)

	// Incr 原子自增并返回新值
	Incr(ctx context.Context, key string) (int64, error)

	// SetIfNewer 仅当 generation 大于 genKey 中已保存的值时，写入 value 和 generation
	SetIfNewer(ctx context.Context, key, genKey string, generation int64, value string, ttl time.Duration) (bool, error)
}

// RedisKVStore 基于 go-redis 的 KV 实现
type RedisKVStore struct {
	client *redis.Client
}

func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{client: client}
}

var _ KVStore = (*RedisKVStore)(nil)

func (r *RedisKVStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKVStore) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

// KEYS[1]=值, KEYS[2]=generation; ARGV[1]=generation, ARGV[2]=值, ARGV[3]=ttl 毫秒 (0 表示不过期)
var setIfNewerScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[2]) or '0')
local generation = tonumber(ARGV[1])
if generation <= current then
  return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
  redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
  redis.call('SET', KEYS[2], ARGV[1])
end
return 1
`)

func (r *RedisKVStore) SetIfNewer(ctx context.Context, key, genKey string, generation int64, value string, ttl time.Duration) (bool, error) {
	n, err := setIfNewerScript.Run(ctx, r.client, []string{key, genKey}, generation, value, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
