package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var got *Event
	bus.Subscribe(EventDeskBooked, func(e *Event) error {
		got = e
		return nil
	})

	bus.Publish(&Event{Type: EventDeskBooked, Payload: []byte(`{}`)})

	require.NotNil(t, got)
	assert.Equal(t, EventDeskBooked, got.Type)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestEventBusPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var payloads []DeskEventPayload
	bus.Subscribe(EventDeskReleased, func(e *Event) error {
		var p DeskEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		payloads = append(payloads, p)
		return nil
	})

	err := bus.PublishJSON(EventDeskReleased, DeskEventPayload{
		DeskID:    "desk-1",
		DeskName:  "corner",
		ChangedAt: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, payloads, 1)
	assert.Equal(t, "desk-1", payloads[0].DeskID)
	assert.Equal(t, "corner", payloads[0].DeskName)
	assert.False(t, payloads[0].Booked)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventDeskCreated, func(*Event) error {
			calls++
			return nil
		})
	}

	bus.Publish(&Event{Type: EventDeskCreated})
	assert.Equal(t, 3, calls)
}

func TestEventBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	second := false
	bus.Subscribe(EventDeskDeleted, func(*Event) error { return errors.New("boom") })
	bus.Subscribe(EventDeskDeleted, func(*Event) error {
		second = true
		return nil
	})

	bus.Publish(&Event{Type: EventDeskDeleted})
	assert.True(t, second)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NotPanics(t, func() {
		bus.Publish(&Event{Type: "nobody_listens"})
	})
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventDeskBooked, nil))
}

func TestPublishJSONMarshalError(t *testing.T) {
	bus := NewEventBus()
	err := bus.PublishJSON(EventDeskBooked, make(chan int))
	assert.Error(t, err)
}
