package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventDeskCreated       = "desk_created"
	EventDeskDeleted       = "desk_deleted"
	EventDeskBooked        = "desk_booked"
	EventDeskReleased      = "desk_released"
	EventDesksBulkReleased = "desks_bulk_released"
)

// DeskEventPayload describes the minimal desk snapshot for event consumers.
type DeskEventPayload struct {
	DeskID    string    `json:"desk_id"`
	DeskName  string    `json:"desk_name"`
	Booked    bool      `json:"booked"`
	UserEmail string    `json:"user_email,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// BulkReleasePayload describes the outcome of a bulk release.
type BulkReleasePayload struct {
	Released  int       `json:"released"`
	Partial   bool      `json:"partial"`
	ChangedAt time.Time `json:"changed_at"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
