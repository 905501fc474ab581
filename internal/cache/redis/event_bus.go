package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lottolens/lottolens/internal/domain"
)

// EventBus implements domain.EventBus using Redis Pub/Sub. Events are
// ephemeral fan-out messages for the WebSocket hub; nothing durable rides
// on this path.
type EventBus struct {
	rdb *redis.Client
}

// NewEventBus creates an EventBus backed by the given Client.
func NewEventBus(c *Client) *EventBus {
	return &EventBus{rdb: c.Underlying()}
}

func eventChannel(channel string) string { return "ev:" + channel }

// Publish JSON-encodes payload and sends it to the channel.
func (eb *EventBus) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("redis: marshal event for %s: %w", channel, err)
	}
	if err := eb.rdb.Publish(ctx, eventChannel(channel), data).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe opens a subscription over the given channels and returns a
// receive-only channel of raw JSON payloads tagged with their channel name.
// The subscription closes when ctx is cancelled.
func (eb *EventBus) Subscribe(ctx context.Context, channels ...string) (<-chan domain.StreamMessage, error) {
	prefixed := make([]string, len(channels))
	for i, ch := range channels {
		prefixed[i] = eventChannel(ch)
	}

	pubsub := eb.rdb.Subscribe(ctx, prefixed...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe %v: %w", channels, err)
	}

	out := make(chan domain.StreamMessage, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()
		src := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- domain.StreamMessage{Channel: msg.Channel[len("ev:"):], Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
