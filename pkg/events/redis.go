package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultChangesChannel is the pub/sub channel ride changes are announced on.
const DefaultChangesChannel = "rides:changed"

// RedisFeed is a ChangeFeed shared by every API instance through Redis pub/sub.
type RedisFeed struct {
	client  *redis.Client
	channel string
}

// NewRedisFeed creates a feed on the given channel.
func NewRedisFeed(client *redis.Client, channel string) *RedisFeed {
	if channel == "" {
		channel = DefaultChangesChannel
	}
	return &RedisFeed{client: client, channel: channel}
}

var _ ChangeFeed = (*RedisFeed)(nil)

func (f *RedisFeed) Notify(ctx context.Context, rideID string) error {
	if err := f.client.Publish(ctx, f.channel, rideID).Err(); err != nil {
		return fmt.Errorf("failed to publish ride change: %w", err)
	}
	return nil
}

// Subscribe waits for the subscription to be confirmed so no change published
// after it returns is missed.
func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan string, error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", f.channel, err)
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				default:
				}
			}
		}
	}()

	return out, nil
}
