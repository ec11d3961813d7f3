package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher pushes batch messages onto the event's Redis channel.
type Publisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewPublisher(rdb *redis.Client, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{rdb: rdb, logger: logger}
}

// Publish serializes and sends one message. Publish failures are logged but
// never fail the batch; progress is best-effort.
func (p *Publisher) Publish(ctx context.Context, msg BatchMessage) {
	if msg.At.IsZero() {
		msg.At = time.Now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to marshal batch message", zap.Error(err))
		return
	}

	channel := ChannelForEvent(msg.EventID)
	if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
		p.logger.Warn("Failed to publish batch message",
			zap.String("channel", channel),
			zap.String("type", msg.Type),
			zap.Error(err))
	}
}

// Subscribe opens the event's batch feed and decodes messages onto the
// returned channel until ctx is done.
func (p *Publisher) Subscribe(ctx context.Context, eventID string) (<-chan BatchMessage, error) {
	sub := p.rdb.Subscribe(ctx, ChannelForEvent(eventID))
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("subscribe batch feed: %w", err)
	}

	out := make(chan BatchMessage, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				var msg BatchMessage
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					p.logger.Warn("Dropping malformed batch message", zap.Error(err))
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// SubscribeAll opens every event's batch feed at once. The API process uses
// this to bridge Redis onto its WebSocket hub without tracking event ids.
func (p *Publisher) SubscribeAll(ctx context.Context) (<-chan BatchMessage, error) {
	sub := p.rdb.PSubscribe(ctx, ChannelForEvent("*"))
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("subscribe batch feeds: %w", err)
	}

	out := make(chan BatchMessage, 64)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				var msg BatchMessage
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					p.logger.Warn("Dropping malformed batch message", zap.Error(err))
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
