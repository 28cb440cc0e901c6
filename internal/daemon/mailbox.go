//go:build linux

package daemon

import "sync"

// mailbox is an unbounded FIFO with a coalescing wake-up signal. Put never
// blocks, so producers (listener, presenter callbacks, focus workers) are
// never stalled by the consumer.
type mailbox struct {
	mu     sync.Mutex
	items  []Message
	closed bool
	signal chan struct{} // buffered, size 1
}

func newMailbox() *mailbox {
	return &mailbox{
		items:  make([]Message, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Put appends m. Returns false once the mailbox is closed.
func (b *mailbox) Put(m Message) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}
	b.items = append(b.items, m)

	select {
	case b.signal <- struct{}{}:
	default:
	}
	return true
}

// Take removes the front message without blocking.
func (b *mailbox) Take() (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		return nil, false
	}
	m := b.items[0]
	b.items[0] = nil
	b.items = b.items[1:]
	return m, true
}

// Wait returns a channel that receives after at least one Put.
func (b *mailbox) Wait() <-chan struct{} {
	return b.signal
}

// Close rejects further Puts. Queued messages stay available to Take.
func (b *mailbox) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

// Len returns the number of queued messages.
func (b *mailbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
