package actor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMailboxDeliversInOrder(t *testing.T) {
	m := newMailbox[int]()
	for i := 0; i < 100; i++ {
		if !m.push(i) {
			t.Fatalf("push %d rejected", i)
		}
	}
	for i := 0; i < 100; i++ {
		got, ok := m.pop()
		if !ok {
			t.Fatalf("mailbox closed after %d messages", i)
		}
		if got != i {
			t.Fatalf("message %d out of order: got %d", i, got)
		}
	}
}

func TestMailboxDrainsQueuedMessagesAfterClose(t *testing.T) {
	m := newMailbox[string]()
	m.push("first")
	m.push("second")
	m.close()

	if m.push("late") {
		t.Fatal("push accepted after close")
	}

	if got, ok := m.pop(); !ok || got != "first" {
		t.Fatalf("pop = (%q, %v), want (first, true)", got, ok)
	}
	if got, ok := m.pop(); !ok || got != "second" {
		t.Fatalf("pop = (%q, %v), want (second, true)", got, ok)
	}
	if _, ok := m.pop(); ok {
		t.Fatal("pop reported a message on a drained, closed mailbox")
	}
}

func TestMailboxPopBlocksUntilPush(t *testing.T) {
	m := newMailbox[int]()
	done := make(chan int, 1)
	go func() {
		v, _ := m.pop()
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	m.push(42)

	select {
	case v := <-done:
		if v != 42 {
			t.Fatalf("pop = %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("pop did not wake up after push")
	}
}

func TestAwaitTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	reply := make(chan int, 1)
	_, err := await(ctx, reply)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("await error = %v, want deadline exceeded", err)
	}
}
