package broker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 100

type subscription struct {
	ctx context.Context
	ch  chan Message
}

// InMemoryBroker is a process-local Broker. Every subscriber of a topic
// receives every message; groupID and key only travel with the message.
type InMemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscription
	closed      bool

	offMu   sync.Mutex
	offsets map[string]int64

	done      chan struct{}
	closeOnce sync.Once
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subscribers: make(map[string][]*subscription),
		offsets:     make(map[string]int64),
		done:        make(chan struct{}),
	}
}

// Publish delivers value to all current subscribers of topic. It blocks while
// a subscriber's buffer is full, until ctx ends or the broker closes.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("broker is closed")
	}

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Offset:    b.nextOffset(topic),
		Timestamp: time.Now().UnixMilli(),
	}

	for _, sub := range b.subscribers[topic] {
		select {
		case sub.ch <- msg:
		case <-sub.ctx.Done():
		case <-ctx.Done():
			return fmt.Errorf("failed to publish to %s: %w", topic, ctx.Err())
		case <-b.done:
			return fmt.Errorf("broker is closed")
		}
	}
	return nil
}

// Subscribe returns a channel of messages published to topic after the call.
// The channel closes when ctx ends or the broker closes.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	sub := &subscription{ctx: ctx, ch: make(chan Message, subscriberBuffer)}
	b.subscribers[topic] = append(b.subscribers[topic], sub)

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(topic, sub)
		case <-b.done:
		}
	}()

	return sub.ch, nil
}

func (b *InMemoryBroker) unsubscribe(topic string, target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, sub := range subs {
		if sub == target {
			b.subscribers[topic] = append(subs[:i:i], subs[i+1:]...)
			close(sub.ch)
			return
		}
	}
}

func (b *InMemoryBroker) nextOffset(topic string) int64 {
	b.offMu.Lock()
	defer b.offMu.Unlock()
	off := b.offsets[topic]
	b.offsets[topic] = off + 1
	return off
}

// Close stops delivery and closes every subscriber channel.
func (b *InMemoryBroker) Close() error {
	b.closeOnce.Do(func() { close(b.done) })

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for topic, subs := range b.subscribers {
		for _, sub := range subs {
			close(sub.ch)
		}
		delete(b.subscribers, topic)
	}
	return nil
}
