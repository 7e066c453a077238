// Package events carries change notifications from mutations to the roster worker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	rediscommon "github.com/vonm84/qah-app/common/redis"
)

// Event types published after a successful mutation.
const (
	DateToggled        = "date.toggled"
	AttendanceUpserted = "attendance.upserted"
	AssignmentUpserted = "assignment.upserted"
	SongsImported      = "songs.imported"
	SongDeleted        = "song.deleted"
	MemberRegistered   = "member.registered"
	MemberDeleted      = "member.deleted"
)

// ChangeEvent 变更事件（写入 Redis Streams 的 data 字段）
type ChangeEvent struct {
	EventType  string `json:"event_type"`
	MemberName string `json:"member_name,omitempty"`
	SongID     string `json:"song_id,omitempty"`
	Date       string `json:"date,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Publisher delivers change events. Delivery is best effort: failures are
// logged by the implementation and never reach the caller.
type Publisher interface {
	Publish(ctx context.Context, ev ChangeEvent)
}

// StreamPublisher appends events to a Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
	now    func() time.Time
}

func NewStreamPublisher(client *redis.Client, stream string, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, logger: logger, now: time.Now}
}

func (p *StreamPublisher) Publish(ctx context.Context, ev ChangeEvent) {
	if ev.Timestamp == 0 {
		ev.Timestamp = p.now().Unix()
	}
	id, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, ev)
	if err != nil {
		p.logger.Warn("Failed to publish change event",
			zap.String("event_type", ev.EventType),
			zap.String("stream", p.stream),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("Published change event",
		zap.String("event_type", ev.EventType),
		zap.String("message_id", id),
	)
}

// Nop drops every event (Redis disabled).
type Nop struct{}

func (Nop) Publish(context.Context, ChangeEvent) {}

// Parse decodes a stream message written by StreamPublisher.
func Parse(msg rediscommon.StreamMessage) (*ChangeEvent, error) {
	data, ok := msg.Data()
	if !ok {
		return nil, fmt.Errorf("message %s has no data field", msg.ID)
	}
	var ev ChangeEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal change event: %w", err)
	}
	if ev.EventType == "" {
		return nil, fmt.Errorf("invalid event: missing event_type")
	}
	return &ev, nil
}
