package progress

import (
	"testing"

	"hacksim/internal/domain"
)

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	bus := New(4)
	ch := bus.Subscribe("monitor")

	bus.Publish(domain.ProgressEvent{RunIndex: 1, Round: 2, Message: "hello"})

	select {
	case event := <-ch:
		if event.Message != "hello" {
			t.Fatalf("unexpected event: %+v", event)
		}
	default:
		t.Fatalf("expected a buffered event")
	}
}

func TestPublishNeverBlocksOnFullBuffer(t *testing.T) {
	bus := New(1)
	bus.Subscribe("slow")

	// Second publish must drop rather than stall.
	bus.Publish(domain.ProgressEvent{Message: "first"})
	bus.Publish(domain.ProgressEvent{Message: "second"})
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New(2)
	ch := bus.Subscribe("gone")
	bus.Unsubscribe("gone")

	if _, open := <-ch; open {
		t.Fatalf("expected closed channel after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(domain.ProgressEvent{Message: "late"})
}

func TestSubscribeSameIDReturnsSameChannel(t *testing.T) {
	bus := New(2)
	first := bus.Subscribe("dup")
	second := bus.Subscribe("dup")
	if first != second {
		t.Fatalf("expected identical channel for repeated subscribe")
	}
}
