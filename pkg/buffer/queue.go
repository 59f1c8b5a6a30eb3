package buffer

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Push and Pop once the queue has been closed.
var ErrClosed = errors.New("buffer: queue closed")

// Queue is a thread-safe growable FIFO queue.
//
// Items are delivered in exactly the order they were pushed. There is no
// capacity limit, no deduplication and no priority. The queue uses a
// one-slot notification channel to wake a waiting consumer; it is designed
// for a single consumer, but concurrent consumers are safe (each item is
// delivered to exactly one of them).
type Queue[T any] struct {
	notify chan struct{}

	mu     sync.Mutex
	closed bool
	items  []T
}

// NewQueue creates a Queue with an initial capacity hint of n items.
// The queue grows beyond n as needed.
func NewQueue[T any](n int) *Queue[T] {
	return &Queue[T]{
		notify: make(chan struct{}, 1),
		items:  make([]T, 0, n),
	}
}

// Push appends v to the tail of the queue. It never blocks. It returns
// ErrClosed if the queue has been closed.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, v)
	q.signalLocked()
	return nil
}

// Pop removes and returns the head of the queue, blocking until an item is
// available. It returns ctx.Err() if the context is done first, and
// ErrClosed once the queue is closed.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		if v, ok := q.popLocked(); ok {
			q.mu.Unlock()
			return v, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.notify:
		}
	}
}

// TryPop removes and returns the head of the queue without blocking.
// ok is false if the queue is empty or closed.
func (q *Queue[T]) TryPop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return v, false
	}
	return q.popLocked()
}

// Len returns the number of items waiting in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close closes the queue. Pending items are discarded, blocked Pop calls
// return ErrClosed, and later Push calls fail. Close is idempotent.
func (q *Queue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	q.items = nil
	close(q.notify)
	return nil
}

func (q *Queue[T]) popLocked() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// Reclaim the backing array once drained.
		q.items = q.items[:0:0]
	} else {
		q.signalLocked()
	}
	return v, true
}

func (q *Queue[T]) signalLocked() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
