package core

import "sync"

// EventType names a category of event.
type EventType string

const (
	DeviceConnectedEvent    EventType = "DeviceConnected"
	DeviceDisconnectedEvent EventType = "DeviceDisconnected"
	BatteryChangedEvent     EventType = "BatteryChanged"
	PowerChangedEvent       EventType = "PowerChanged"
	PatternChangedEvent     EventType = "PatternChanged"
	PresetChangedEvent      EventType = "PresetChanged"
	BrightnessChangedEvent  EventType = "BrightnessChanged"
)

// Event is a published fact about something that happened.
type Event struct {
	Type    EventType
	Payload interface{}
}

// Subscriber receives events for the types it registered.
type Subscriber chan Event

// EventBus fans events out to subscribers by type.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
}

// NewEventBus creates a new EventBus.
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
	}
}

// Subscribe registers a buffered channel for the given event types.
func (eb *EventBus) Subscribe(eventTypes ...EventType) Subscriber {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(Subscriber, 100) // Buffered channel so publishers don't block
	for _, t := range eventTypes {
		eb.subscribers[t] = append(eb.subscribers[t], ch)
	}

	return ch
}

// Unsubscribe detaches a subscriber from every type it registered for.
func (eb *EventBus) Unsubscribe(ch Subscriber, eventTypes ...EventType) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, t := range eventTypes {
		subs := eb.subscribers[t]
		for i, sub := range subs {
			if sub == ch {
				eb.subscribers[t] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to every subscriber of its type. Publish
// never blocks.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if subs, ok := eb.subscribers[event.Type]; ok {
		for _, sub := range subs {
			select {
			case sub <- event:
			default:
				// A full subscriber loses the event rather than stalling publishers.
			}
		}
	}
}
