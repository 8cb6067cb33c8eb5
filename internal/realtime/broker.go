// Package realtime provides the push side of the API: explicit, cancellable
// subscriptions to balance and catalog changes, replacing the always-on
// document listeners of the hosted-backend era.
package realtime

import "sync"

// Event is a single published update.
type Event struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// Subscription delivers events for one topic until closed. Closing is
// idempotent and releases the broker-side slot deterministically.
type Subscription struct {
	C      <-chan Event
	broker *Broker
	topic  string
	ch     chan Event
	once   sync.Once
}

// Close unsubscribes. Pending buffered events may still be drained from C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.broker.remove(s.topic, s.ch)
		close(s.ch)
	})
}

// Broker fans events out to per-topic subscribers. Publish never blocks: a
// subscriber that cannot keep up loses events rather than stalling the
// publisher.
type Broker struct {
	mu     sync.Mutex
	topics map[string]map[chan Event]struct{}
	buffer int
}

// NewBroker creates a broker whose subscriptions buffer the given number of
// undelivered events.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 8
	}
	return &Broker{topics: make(map[string]map[chan Event]struct{}), buffer: buffer}
}

// Subscribe registers interest in a topic.
func (b *Broker) Subscribe(topic string) *Subscription {
	ch := make(chan Event, b.buffer)
	b.mu.Lock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[chan Event]struct{})
		b.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()
	return &Subscription{C: ch, broker: b, topic: topic, ch: ch}
}

// Publish delivers an event to every current subscriber of the topic.
func (b *Broker) Publish(topic string, payload any) {
	event := Event{Topic: topic, Payload: payload}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.topics[topic] {
		select {
		case ch <- event:
		default:
			// Slow consumer; drop instead of blocking the award path.
		}
	}
}

func (b *Broker) remove(topic string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.topics[topic]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(b.topics, topic)
		}
	}
}
