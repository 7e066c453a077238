package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	rediscommon "github.com/vonm84/qah-app/common/redis"
	"github.com/vonm84/qah-app/internal/events"
)

// Refresher rebuilds the roster snapshot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// EventConsumer 变更事件消费者：每批消息最多触发一次名单刷新
type EventConsumer struct {
	redisClient  *redis.Client
	refresher    Refresher
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	block        time.Duration
}

// NewEventConsumer 创建事件消费者
func NewEventConsumer(
	redisClient *redis.Client,
	refresher Refresher,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
) *EventConsumer {
	return &EventConsumer{
		redisClient:  redisClient,
		refresher:    refresher,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		block:        2 * time.Second,
	}
}

// Start 启动事件消费者（阻塞直到 ctx 结束）
func (c *EventConsumer) Start(ctx context.Context) error {
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Event consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 消费事件（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := c.consumeEvents(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to consume events",
				zap.Error(err),
				zap.Duration("backoff", backoffDuration),
			)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoffDuration):
				backoffDuration *= 2
				if backoffDuration > maxBackoff {
					backoffDuration = maxBackoff
				}
			}
			continue
		}
		backoffDuration = time.Second
	}
}

// consumeEvents handles one batch. Messages this consumer received earlier
// but never acked (a failed refresh) are retried before new ones are read.
// Any valid event triggers a single refresh; the batch is acked only after
// the refresh succeeded. Returns how many messages were acked.
func (c *EventConsumer) consumeEvents(ctx context.Context) (int, error) {
	messages, err := rediscommon.ReadPendingFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to read pending messages: %w", err)
	}
	if len(messages) > 0 {
		c.logger.Info("Retrying pending events", zap.Int("count", len(messages)))
	} else {
		messages, err = rediscommon.ReadFromStream(
			ctx,
			c.redisClient,
			c.stream,
			c.groupName,
			c.consumerName,
			c.batchSize,
			c.block,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to read from stream: %w", err)
		}
	}
	if len(messages) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(messages))
	relevant := 0
	for _, msg := range messages {
		ids = append(ids, msg.ID)
		ev, err := events.Parse(msg)
		if err != nil {
			// 无法解析的消息直接确认，避免反复投递
			c.logger.Warn("Dropping malformed event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		c.logger.Debug("Received change event",
			zap.String("event_type", ev.EventType),
			zap.String("message_id", msg.ID),
		)
		relevant++
	}

	if relevant > 0 {
		if err := c.refresher.Refresh(ctx); err != nil {
			return 0, fmt.Errorf("failed to refresh roster: %w", err)
		}
	}

	if err := rediscommon.Ack(ctx, c.redisClient, c.stream, c.groupName, ids...); err != nil {
		c.logger.Warn("Failed to ack messages",
			zap.Int("count", len(ids)),
			zap.Error(err),
		)
		return 0, nil
	}
	return len(ids), nil
}
