// Path: internal/events/broker.go
package events

import "sync"

// Event represents a message passed through the broker.
type Event struct {
	Topic string
	Data  any
}

// Broker implements a simple in-memory pub/sub system. The service publishes
// cycle outcomes on it; report consumers (the mail sender) subscribe.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe creates a new subscription to a topic.
// It returns a read-only channel where events for that topic will be sent.
func (b *Broker) Subscribe(topic string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 1) // Buffered channel to prevent blocking publishers
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch
}

// Publish sends an event to all subscribers of a topic.
func (b *Broker) Publish(topic string, data any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	event := Event{Topic: topic, Data: data}
	for _, ch := range b.subscribers[topic] {
		// Non-blocking send: a slow subscriber drops the event rather
		// than stalling the publishing cycle.
		select {
		case ch <- event:
		default:
		}
	}
}
