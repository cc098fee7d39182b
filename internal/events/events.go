package events

import (
	"encoding/json"
	"sync"
	"time"
)

// Booking lifecycle events.
const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingRejected  = "booking_rejected"
	EventBookingCancelled = "booking_cancelled"
)

// Moderation events.
const (
	EventModerationSubmitted = "moderation_submitted"
	EventModerationApproved  = "moderation_approved"
	EventModerationRejected  = "moderation_rejected"
)

// BookingEventPayload is the booking snapshot delivered to subscribers.
type BookingEventPayload struct {
	RequestID     string    `json:"request_id"`
	PerformerID   int64     `json:"performer_id"`
	PerformerName string    `json:"performer_name"`
	CustomerID    int64     `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	Status        string    `json:"status"`
	Date          time.Time `json:"date"`
	Details       string    `json:"details,omitempty"`
}

// ModerationEventPayload describes a moderation submission or decision.
type ModerationEventPayload struct {
	ItemID        string `json:"item_id"`
	Kind          string `json:"kind"`
	PerformerID   int64  `json:"performer_id"`
	PerformerName string `json:"performer_name"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
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

// Publish notifies subscribers of the event type. Handlers run
// synchronously; the caller decides the concurrency model.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
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
