package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "vintner:cellar:"

// RedisNotifier publishes change signals over Redis pub/sub so that every
// replica sharing the database refreshes its subscriptions.
type RedisNotifier struct {
	client redis.UniversalClient
}

// NewRedisNotifier wraps an existing client. The caller owns the client.
func NewRedisNotifier(client redis.UniversalClient) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func redisChannel(userID string) string { return redisChannelPrefix + userID }

// Notify publishes a change signal for userID.
func (n *RedisNotifier) Notify(ctx context.Context, userID string) error {
	if err := n.client.Publish(ctx, redisChannel(userID), "changed").Err(); err != nil {
		return fmt.Errorf("publish change for %s: %w", userID, err)
	}
	return nil
}

// Listen subscribes to userID's channel. It returns once Redis confirmed the
// subscription, so a Notify issued afterwards is never missed.
func (n *RedisNotifier) Listen(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	ps := n.client.Subscribe(ctx, redisChannel(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", redisChannel(userID), err)
	}

	out := make(chan struct{}, 1)
	msgs := ps.Channel()
	go func() {
		defer close(out)
		for range msgs {
			signal(out)
		}
	}()

	var once sync.Once
	stop := func() { once.Do(func() { _ = ps.Close() }) }
	return out, stop, nil
}
