package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	first := bus.Subscribe()
	second := bus.Subscribe()

	bus.Publish(SessionInvalidated{Reason: "token expired"})

	select {
	case ev := <-first.C():
		assert.Equal(t, "token expired", ev.Reason)
		assert.False(t, ev.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("first subscriber did not receive event")
	}

	select {
	case ev := <-second.C():
		assert.Equal(t, "token expired", ev.Reason)
	case <-time.After(time.Second):
		t.Fatal("second subscriber did not receive event")
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()
	bus.Unsubscribe(sub)

	_, ok := <-sub.C()
	require.False(t, ok)

	// Double unsubscribe must not panic.
	bus.Unsubscribe(sub)
	bus.Publish(SessionInvalidated{Reason: "after unsubscribe"})
}

func TestBus_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()

	done := make(chan struct{})
	go func() {
		// Second publish hits a full buffer; it must drop, not block.
		bus.Publish(SessionInvalidated{Reason: "one"})
		bus.Publish(SessionInvalidated{Reason: "two"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	ev := <-sub.C()
	assert.Equal(t, "one", ev.Reason)
}
