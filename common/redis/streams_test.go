package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCreateConsumerGroup_Idempotent(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "qah:events", "roster"))
	require.NoError(t, CreateConsumerGroup(ctx, client, "qah:events", "roster"))
}

func TestPublishAndRead(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "qah:events", "roster"))

	id, err := PublishJSONToStream(ctx, client, "qah:events", map[string]string{"event_type": "attendance.upserted"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := ReadFromStream(ctx, client, "qah:events", "roster", "worker-1", 10, 10*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)

	data, ok := msgs[0].Data()
	require.True(t, ok)
	assert.JSONEq(t, `{"event_type":"attendance.upserted"}`, data)

	require.NoError(t, Ack(ctx, client, "qah:events", "roster", id))

	pending, err := client.XPending(ctx, "qah:events", "roster").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

func TestReadPendingFromStream_RedeliversUnacked(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "qah:events", "roster"))

	pending, err := ReadPendingFromStream(ctx, client, "qah:events", "roster", "worker-1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	id, err := PublishJSONToStream(ctx, client, "qah:events", map[string]string{"event_type": "song.deleted"})
	require.NoError(t, err)

	msgs, err := ReadFromStream(ctx, client, "qah:events", "roster", "worker-1", 10, 10*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	// 未确认的消息不会再通过 ">" 投递，但仍在本消费者的 pending 列表里
	again, err := ReadFromStream(ctx, client, "qah:events", "roster", "worker-1", 10, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, again)

	pending, err = ReadPendingFromStream(ctx, client, "qah:events", "roster", "worker-1", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)

	others, err := ReadPendingFromStream(ctx, client, "qah:events", "roster", "worker-2", 10)
	require.NoError(t, err)
	assert.Empty(t, others)

	require.NoError(t, Ack(ctx, client, "qah:events", "roster", id))
	pending, err = ReadPendingFromStream(ctx, client, "qah:events", "roster", "worker-1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
