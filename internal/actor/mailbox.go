package actor

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned when a message is sent to a component whose
// mailbox has already been closed.
var ErrStopped = errors.New("actor stopped")

// mailbox is an unbounded FIFO queue. Every stateful component drains
// exactly one mailbox from a single goroutine, which is the only
// mechanism serializing access to its state. The queue is unbounded so
// fire-and-forget senders (edge occupancy reports) never block.
type mailbox[T any] struct {
	mu     sync.Mutex
	filled *sync.Cond
	queue  []T
	closed bool
}

func newMailbox[T any]() *mailbox[T] {
	m := &mailbox[T]{}
	m.filled = sync.NewCond(&m.mu)
	return m
}

// push enqueues a message and returns immediately. Returns false if
// the mailbox is closed.
func (m *mailbox[T]) push(msg T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.queue = append(m.queue, msg)
	m.filled.Signal()
	return true
}

// pop blocks until a message is available or the mailbox is closed and
// fully drained.
func (m *mailbox[T]) pop() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.queue) == 0 && !m.closed {
		m.filled.Wait()
	}
	var zero T
	if len(m.queue) == 0 {
		return zero, false
	}
	msg := m.queue[0]
	m.queue[0] = zero
	m.queue = m.queue[1:]
	return msg, true
}

// close stops accepting new messages. Messages already queued are
// still delivered before pop reports closure.
func (m *mailbox[T]) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.filled.Broadcast()
}

// await suspends the caller until a reply arrives or the context
// expires. Reply channels are buffered with capacity one, so a
// replying actor never blocks even when the asker has given up.
func await[T any](ctx context.Context, reply <-chan T) (T, error) {
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
