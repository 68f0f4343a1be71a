package chat

import (
	"testing"
)

func TestBroadcastAllReachesEveryConnection(t *testing.T) {
	b := NewBroadcaster()

	chA := make(chan []byte, 8)
	chB := make(chan []byte, 8)
	b.Attach("conn-a", chA)
	b.Attach("conn-b", chB)

	b.BroadcastAll(NewUserLeftEvent("user-1"))

	for _, ch := range []chan []byte{chA, chB} {
		env := mustEvent(t, ch, EventUserLeft)
		if string(env.Payload) != `{"userId":"user-1"}` {
			t.Fatalf("unexpected payload: %s", env.Payload)
		}
	}

	// Exactly once each.
	assertNoEvent(t, chA)
	assertNoEvent(t, chB)
}

func TestSendToReachesOnlyTarget(t *testing.T) {
	b := NewBroadcaster()

	chA := make(chan []byte, 8)
	chB := make(chan []byte, 8)
	b.Attach("conn-a", chA)
	b.Attach("conn-b", chB)

	b.SendTo("conn-a", NewErrorEvent("boom"))

	env := mustEvent(t, chA, EventError)
	if string(env.Payload) != `{"message":"boom"}` {
		t.Fatalf("unexpected payload: %s", env.Payload)
	}
	assertNoEvent(t, chB)
}

func TestSendToUnknownConnectionIsDropped(t *testing.T) {
	b := NewBroadcaster()

	// Must not panic or block.
	b.SendTo("missing", NewErrorEvent("boom"))
}

func TestBroadcastSkipsFullRecipient(t *testing.T) {
	b := NewBroadcaster()

	full := make(chan []byte) // no capacity, nobody reading
	ok := make(chan []byte, 8)
	b.Attach("conn-full", full)
	b.Attach("conn-ok", ok)

	b.BroadcastAll(NewUserLeftEvent("user-1"))

	// Healthy recipient still got the event.
	mustEvent(t, ok, EventUserLeft)
}

func TestDetachStopsDelivery(t *testing.T) {
	b := NewBroadcaster()

	ch := make(chan []byte, 8)
	b.Attach("conn-a", ch)
	b.Detach("conn-a")

	b.BroadcastAll(NewUserLeftEvent("user-1"))
	assertNoEvent(t, ch)

	if b.Len() != 0 {
		t.Fatalf("expected no attached connections, got %d", b.Len())
	}
}

func TestCloseAllClosesSendChannels(t *testing.T) {
	b := NewBroadcaster()

	chA := make(chan []byte, 8)
	chB := make(chan []byte, 8)
	b.Attach("conn-a", chA)
	b.Attach("conn-b", chB)

	b.CloseAll()

	if _, open := <-chA; open {
		t.Fatal("conn-a send channel should be closed")
	}
	if _, open := <-chB; open {
		t.Fatal("conn-b send channel should be closed")
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty broadcaster, got %d", b.Len())
	}
}
