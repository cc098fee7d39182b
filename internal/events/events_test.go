package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()

	var got []string
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		got = append(got, "first")
		return nil
	})
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		got = append(got, "second")
		return nil
	})
	bus.Subscribe(EventBookingRejected, func(e *Event) error {
		got = append(got, "wrong type")
		return nil
	})

	bus.Publish(&Event{Type: EventBookingCreated})
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestPublishSetsCreatedAt(t *testing.T) {
	bus := NewEventBus()

	event := &Event{Type: EventModerationSubmitted}
	bus.Publish(event)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got ModerationEventPayload
	bus.Subscribe(EventModerationRejected, func(e *Event) error {
		return json.Unmarshal(e.Payload, &got)
	})

	payload := ModerationEventPayload{ItemID: "mod-1", Kind: "gallery", Status: "rejected", Reason: "Низкое качество"}
	require.NoError(t, bus.PublishJSON(EventModerationRejected, payload))
	assert.Equal(t, payload, got)
}

func TestPublishJSONNilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
}

func TestHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	var delivered bool
	bus.Subscribe(EventBookingConfirmed, func(e *Event) error {
		return errors.New("boom")
	})
	bus.Subscribe(EventBookingConfirmed, func(e *Event) error {
		delivered = true
		return nil
	})

	bus.Publish(&Event{Type: EventBookingConfirmed})
	assert.True(t, delivered)
}
