package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis rides Redis Pub/Sub so events published by one API instance reach
// subscribers connected to another. Semantics match the in-memory broker:
// fire-and-forget, no backlog.
type Redis struct {
	rdb     *redis.Client
	channel string
}

func NewRedis(rdb *redis.Client, channel string) *Redis {
	return &Redis{rdb: rdb, channel: channel}
}

func (r *Redis) Publish(ctx context.Context, payload []byte) error {
	return r.rdb.Publish(ctx, r.channel, payload).Err()
}

func (r *Redis) Subscribe(ctx context.Context) (<-chan []byte, error) {
	ps := r.rdb.Subscribe(ctx, r.channel)
	// Force the SUBSCRIBE round-trip so a broken connection fails here, not
	// silently in the pump goroutine.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	out := make(chan []byte, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()
		in := ps.Channel()
		for {
			select {
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default: // drop for slow subscribers
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (r *Redis) Close() error { return nil }
