// Package events provides a lightweight in-process event bus that carries
// scheduler activity to subscribers such as the status tracker and MQTT.
package events

import (
	"encoding/json"
	"sync"
	"time"
)

// EventType identifies the kind of event.
type EventType string

const (
	// Plug events
	PlugResolved     EventType = "plug.resolved"
	PlugStateApplied EventType = "plug.state_applied"
	PlugApplyFailed  EventType = "plug.apply_failed"

	// Schedule events
	TransitionScheduled EventType = "schedule.transition_scheduled"
	SunsetFallback      EventType = "schedule.sunset_fallback"

	// StatusSnapshot is sent to stream clients when they connect
	StatusSnapshot EventType = "status.snapshot"
)

// Event is a single event emitted by a producer.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates an Event stamped with the current time.
// If marshaling fails the Data field is set to null.
func NewEvent(t EventType, data any) Event {
	return NewEventAt(t, data, time.Now())
}

// NewEventAt creates an Event stamped with ts.
func NewEventAt(t EventType, data any, ts time.Time) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	return Event{
		Type:      t,
		Timestamp: ts,
		Data:      raw,
	}
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Publisher is anything events can be sent to.
type Publisher interface {
	Publish(Event)
}

// SubscriberFunc is a callback invoked for each event.
// Implementations must not block; slow subscribers should buffer internally.
type SubscriberFunc func(Event)

type subscriber struct {
	id int
	fn SubscriberFunc
}

// Bus is a synchronous fan-out event bus. Subscribers are called in the
// order they subscribed, and Publish returns once all of them have run.
type Bus struct {
	mu          sync.RWMutex
	subscribers []subscriber
	nextID      int
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a callback and returns an unsubscribe function.
// Calling the returned function more than once is a no-op.
func (b *Bus) Subscribe(fn SubscriberFunc) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers = append(b.subscribers, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subscribers {
				if s.id == id {
					b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// Len returns the number of current subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Publish sends an event to all current subscribers.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	// Snapshot under the read lock so callbacks may subscribe or unsubscribe.
	subs := make([]SubscriberFunc, len(b.subscribers))
	for i, s := range b.subscribers {
		subs[i] = s.fn
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}
