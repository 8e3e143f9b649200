package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const contentChannel = "content_events"

// ContentPublisher sends content notifications through redis so every running
// instance's hub sees them, not just the one that handled the write.
type ContentPublisher struct {
	rdb    redis.UniversalClient
	logger *zap.Logger
}

func NewContentPublisher(rdb redis.UniversalClient, logger *zap.Logger) *ContentPublisher {
	return &ContentPublisher{rdb: rdb, logger: logger}
}

func (p *ContentPublisher) Publish(ctx context.Context, channel string, payload interface{}) error {
	msg := Message{Type: MsgTypeContent, Channel: channel, Data: payload}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, contentChannel, raw).Err(); err != nil {
		p.logger.Warn("content event publish failed",
			zap.String("channel", channel), zap.Error(err))
		return err
	}
	return nil
}

// ListenContentEvents forwards redis content notifications into the hub until
// ctx is done. Run in its own goroutine.
func ListenContentEvents(ctx context.Context, rdb redis.UniversalClient, hub *Hub, logger *zap.Logger) {
	sub := rdb.Subscribe(ctx, contentChannel)
	defer sub.Close()
	ch := sub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Message
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warn("unreadable content event", zap.Error(err))
				continue
			}
			hub.Broadcast(event)
		case <-ctx.Done():
			return
		}
	}
}
