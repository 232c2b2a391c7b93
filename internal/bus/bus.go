package bus

import (
	"log/slog"
	"sync"

	"github.com/statecast/statecast/internal/metrics"
)

// Listener receives one published event. A non-nil error marks this delivery
// as failed; it is logged and the fan-out continues with the next listener.
type Listener func(event []byte) error

// Subscription identifies one listener binding. It is the handle passed to
// Unsubscribe.
type Subscription struct {
	id    uint64
	topic string
}

// Topic returns the topic name this subscription is bound to.
func (s *Subscription) Topic() string {
	return s.topic
}

type binding struct {
	id uint64
	fn Listener
}

// Bus is the topic-to-listeners registry. All methods are safe for
// concurrent use; Publish may run concurrently with Subscribe and
// Unsubscribe.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	topics map[string][]binding
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{topics: make(map[string][]binding)}
}

// Subscribe registers fn as a listener for the given topic and returns the
// handle that removes it again.
func (b *Bus) Subscribe(topic string, fn Listener) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.topics[topic] = append(b.topics[topic], binding{id: b.nextID, fn: fn})
	metrics.ActiveSubscriptions.Inc()
	return &Subscription{id: b.nextID, topic: topic}
}

// Unsubscribe removes the binding identified by sub. Unsubscribing twice, or
// passing nil, is a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	bindings := b.topics[sub.topic]
	for i, bd := range bindings {
		if bd.id == sub.id {
			b.topics[sub.topic] = append(bindings[:i:i], bindings[i+1:]...)
			if len(b.topics[sub.topic]) == 0 {
				delete(b.topics, sub.topic)
			}
			metrics.ActiveSubscriptions.Dec()
			return
		}
	}
}

// Publish delivers event to every listener currently bound to topic, in
// registration order. Listener failures are logged and skipped so one dead
// client cannot starve the rest of the fan-out.
func (b *Bus) Publish(topic string, event []byte) {
	b.mu.RLock()
	bindings := make([]binding, len(b.topics[topic]))
	copy(bindings, b.topics[topic])
	b.mu.RUnlock()

	// Listeners run outside the lock: a failing listener may unsubscribe
	// itself (or its whole connection) during delivery.
	for _, bd := range bindings {
		if err := bd.fn(event); err != nil {
			slog.Warn("bus: listener delivery failed", "topic", topic, "err", err)
		}
	}
}

// ListenerCount returns the number of listeners currently bound to topic.
func (b *Bus) ListenerCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
