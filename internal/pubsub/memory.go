package pubsub

import (
	"context"
	"errors"
	"sync"
)

const subscriberBuffer = 16

// Memory is an in-process broker: one channel per subscriber, non-blocking
// sends. A subscriber that falls more than subscriberBuffer events behind
// loses events rather than stalling the publisher.
type Memory struct {
	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	done   chan struct{}
	closed bool
}

func NewMemory() *Memory {
	return &Memory{
		subs: make(map[chan []byte]struct{}),
		done: make(chan struct{}),
	}
}

func (m *Memory) Publish(_ context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("pubsub: broker closed")
	}
	for ch := range m.subs {
		select {
		case ch <- payload:
		default: // drop for slow subscribers
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context) (<-chan []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("pubsub: broker closed")
	}
	ch := make(chan []byte, subscriberBuffer)
	m.subs[ch] = struct{}{}

	// The watcher exits on either the subscriber's ctx or broker shutdown;
	// Close already removed and closed the channel in the latter case.
	go func() {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			defer m.mu.Unlock()
			if _, ok := m.subs[ch]; ok {
				delete(m.subs, ch)
				close(ch)
			}
		case <-m.done:
		}
	}()
	return ch, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	for ch := range m.subs {
		delete(m.subs, ch)
		close(ch)
	}
	return nil
}
