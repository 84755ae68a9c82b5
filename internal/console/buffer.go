package console

import "sync"

// responseBuffer correlates inbound console messages with waiting queries.
//
// It keeps only the latest message per address (no history, no queue) plus
// one-shot waiter channels registered by in-flight reads. A read always
// discards the stale entry for its address before waiting, so it can only
// observe a reply that arrived after the query was sent.
//
// Two concurrent reads of the same address both get the next reply — a
// deliberate relaxation of the one-winner race the poll-loop design had.
type responseBuffer struct {
	mu      sync.Mutex
	latest  map[string]Message
	waiters map[string][]chan Message
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{
		latest:  make(map[string]Message),
		waiters: make(map[string][]chan Message),
	}
}

// store records msg as the latest for its address, overwriting any previous
// entry, and resolves every waiter registered for that address.
func (b *responseBuffer) store(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest[msg.Address] = msg

	for _, ch := range b.waiters[msg.Address] {
		// Waiter channels are buffered (capacity 1); a waiter that already
		// received or gave up must not block the listener.
		select {
		case ch <- msg:
		default:
		}
	}
	delete(b.waiters, msg.Address)
}

// await discards any stale entry for the address and registers a one-shot
// channel that receives the next message stored for it.
func (b *responseBuffer) await(address string) chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.latest, address)

	ch := make(chan Message, 1)
	b.waiters[address] = append(b.waiters[address], ch)
	return ch
}

// cancel removes a waiter registered with await. Safe to call after the
// waiter has been resolved.
func (b *responseBuffer) cancel(address string, ch chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	waiters := b.waiters[address]
	for i, w := range waiters {
		if w == ch {
			b.waiters[address] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(b.waiters[address]) == 0 {
		delete(b.waiters, address)
	}
}

// last returns the latest message stored for the address, if any.
func (b *responseBuffer) last(address string) (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg, ok := b.latest[address]
	return msg, ok
}

// clear drops every buffered message and waiter. Called on disconnect.
func (b *responseBuffer) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest = make(map[string]Message)
	b.waiters = make(map[string][]chan Message)
}

// size returns the number of buffered addresses.
func (b *responseBuffer) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.latest)
}
