package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

// RedisBus carries change events over a Redis pub/sub channel, so writes made
// by any process (including administrative tools outside this service) reach
// the trigger router.
type RedisBus struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

// NewRedisBus connects to Redis and returns a change bus on the given channel
func NewRedisBus(redisURL, channel string, log logger.Logger) (*RedisBus, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBus{
		client:  client,
		channel: channel,
		log:     log,
	}, nil
}

// Publish emits the change event to the Redis channel
func (b *RedisBus) Publish(ctx context.Context, event ports.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

// Subscribe consumes the Redis channel. The returned channel closes when the
// context is cancelled or the subscription drops.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan ports.ChangeEvent, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	out := make(chan ports.ChangeEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var event ports.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.Warn(ctx, "Dropping malformed change event", map[string]interface{}{
						"channel": b.channel,
						"error":   err.Error(),
					})
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases the Redis connection
func (b *RedisBus) Close() error {
	return b.client.Close()
}
