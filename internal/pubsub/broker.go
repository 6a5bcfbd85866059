// Package pubsub fans out "book added" events to subscription clients.
//
// The broker is an explicit object built once in main and handed to the
// mutation resolver; payloads are opaque JSON so the in-memory and Redis
// backends stay interchangeable. Delivery is at-most-once per connected
// subscriber with no replay for late joiners.
package pubsub

import "context"

type Broker interface {
	// Publish delivers payload to every current subscriber.
	Publish(ctx context.Context, payload []byte) error
	// Subscribe returns a channel of payloads. The channel is closed when ctx
	// is canceled or the broker shuts down.
	Subscribe(ctx context.Context) (<-chan []byte, error)
	Close() error
}
