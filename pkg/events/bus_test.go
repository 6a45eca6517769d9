package events

import (
	"testing"
	"time"

	"github.com/jscyril/preview_player/api"
)

func TestPublishDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewEventBus()
	ended := bus.Subscribe(api.EventTrackEnded)
	updates := bus.Subscribe(api.EventPositionUpdate)

	bus.Publish(api.AudioEvent{Type: api.EventTrackEnded, Payload: "a"})

	select {
	case ev := <-ended:
		if ev.Payload != "a" {
			t.Errorf("Expected payload a, got %v", ev.Payload)
		}
	default:
		t.Fatal("ended subscriber received nothing")
	}

	select {
	case ev := <-updates:
		t.Errorf("position subscriber should not receive %v", ev)
	default:
	}
}

func TestPublishKeepsLatestPositionUpdate(t *testing.T) {
	bus := NewEventBus()
	updates := bus.Subscribe(api.EventPositionUpdate)

	for i := 0; i < 25; i++ {
		bus.Publish(api.AudioEvent{Type: api.EventPositionUpdate, Payload: time.Duration(i) * time.Second})
	}

	if got := len(updates); got != cap(updates) {
		t.Fatalf("Expected a full buffer of %d updates, got %d", cap(updates), got)
	}

	var last api.AudioEvent
	for len(updates) > 0 {
		last = <-updates
	}
	if last.Payload != 24*time.Second {
		t.Errorf("Expected latest update 24s, got %v", last.Payload)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe(api.EventPositionUpdate)
	bus.Close()
	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed")
	}

	late := bus.Subscribe(api.EventTrackEnded)
	if _, ok := <-late; ok {
		t.Error("Subscribe on a closed bus should return a closed channel")
	}
}
