// Package events provides an in-process publish/subscribe hub for advisory
// and job lifecycle events. Subscribers receive events over buffered
// channels; slow subscribers drop events rather than block publishers.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types published by the application.
const (
	TypeAdvisoryCreated = "advisory.created"
	TypeJobCompleted    = "job.completed"
	TypeJobFailed       = "job.failed"
	TypeBackupCompleted = "backup.completed"
)

// Event is one bus message.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

const subscriberBuffer = 16

// Bus is a mutex-guarded fan-out hub. Safe for concurrent use.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
	log         zerolog.Logger
}

// NewBus creates an event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[int]chan Event),
		log:         log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the subscription.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber. Full subscriber buffers
// drop the event for that subscriber.
func (b *Bus) Publish(eventType string, payload interface{}) {
	event := Event{Type: eventType, Timestamp: time.Now(), Payload: payload}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.log.Warn().Int("subscriber", id).Str("type", eventType).Msg("Subscriber buffer full, dropping event")
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
