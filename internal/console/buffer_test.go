package console

import (
	"testing"
	"time"
)

func TestBufferStoreOverwrites(t *testing.T) {
	b := newResponseBuffer()

	b.store(Message{Address: "/a", Arguments: []any{float32(0.1)}})
	b.store(Message{Address: "/a", Arguments: []any{float32(0.9)}})

	msg, ok := b.last("/a")
	if !ok {
		t.Fatal("last() found nothing")
	}
	if got := msg.Arguments[0].(float32); got != 0.9 {
		t.Errorf("last() argument = %v, want 0.9", got)
	}
	if b.size() != 1 {
		t.Errorf("size() = %d, want 1", b.size())
	}
}

func TestBufferAwaitResolvesWaiter(t *testing.T) {
	b := newResponseBuffer()

	ch := b.await("/a")
	b.store(Message{Address: "/a", Arguments: []any{int32(1)}})

	select {
	case msg := <-ch:
		if msg.Address != "/a" {
			t.Errorf("waiter got address %q, want /a", msg.Address)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never resolved")
	}
}

func TestBufferAwaitDiscardsStale(t *testing.T) {
	b := newResponseBuffer()

	// A reply that predates the query must not satisfy it.
	b.store(Message{Address: "/a", Arguments: []any{float32(0.1)}})
	ch := b.await("/a")

	select {
	case msg := <-ch:
		t.Fatalf("waiter resolved with stale message %+v", msg)
	default:
	}
	if _, ok := b.last("/a"); ok {
		t.Error("stale entry survived await()")
	}
}

func TestBufferStoreResolvesAllWaiters(t *testing.T) {
	b := newResponseBuffer()

	ch1 := b.await("/a")
	ch2 := b.await("/a")
	b.store(Message{Address: "/a"})

	for i, ch := range []chan Message{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("waiter %d never resolved", i+1)
		}
	}
}

func TestBufferWaitersAreAddressScoped(t *testing.T) {
	b := newResponseBuffer()

	ch := b.await("/a")
	b.store(Message{Address: "/b"})

	select {
	case msg := <-ch:
		t.Fatalf("waiter for /a resolved with %q", msg.Address)
	default:
	}
}

func TestBufferCancel(t *testing.T) {
	b := newResponseBuffer()

	ch := b.await("/a")
	b.cancel("/a", ch)
	b.store(Message{Address: "/a"})

	select {
	case <-ch:
		t.Fatal("cancelled waiter resolved")
	default:
	}

	// Cancelling after resolution must not panic or corrupt state.
	ch2 := b.await("/a")
	b.store(Message{Address: "/a"})
	b.cancel("/a", ch2)
}

func TestBufferClear(t *testing.T) {
	b := newResponseBuffer()

	b.store(Message{Address: "/a"})
	b.store(Message{Address: "/b"})
	ch := b.await("/c")

	b.clear()

	if b.size() != 0 {
		t.Errorf("size() after clear = %d, want 0", b.size())
	}
	b.store(Message{Address: "/c"})
	select {
	case <-ch:
		t.Fatal("waiter from before clear resolved")
	default:
	}
}
