// Package admission bounds how many ingestion jobs run at once. Submissions
// past the capacity wait in strict FIFO order; a waiter that gives up (context
// cancellation) leaves the queue without disturbing anyone behind it.
package admission

import (
	"context"
	"errors"
	"sync"
)

// StateFunc receives the queue's state after every admission transition:
// the number of jobs holding a slot and the number still waiting.
type StateFunc func(inFlight, depth int)

type waiter struct {
	grant chan struct{}
}

// Queue is a fixed-capacity FIFO admission gate.
type Queue struct {
	mu       sync.Mutex
	capacity int
	inFlight int
	waiters  []*waiter
	onState  StateFunc
}

// New constructs a queue admitting at most capacity jobs concurrently.
// Capacity below one is an error, not a default: a zero-capacity gate would
// block every submission forever.
func New(capacity int, onState StateFunc) (*Queue, error) {
	if capacity < 1 {
		return nil, errors.New("admission: capacity must be at least 1")
	}
	return &Queue{capacity: capacity, onState: onState}, nil
}

// Capacity returns the configured concurrency bound.
func (q *Queue) Capacity() int {
	return q.capacity
}

// InFlight returns how many jobs currently hold a slot.
func (q *Queue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

// Depth returns how many submissions are waiting for a slot.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}

// Acquire blocks until a slot is free or ctx is done. On success the caller
// owns one slot and must call Release exactly once.
func (q *Queue) Acquire(ctx context.Context) error {
	q.mu.Lock()
	if q.inFlight < q.capacity && len(q.waiters) == 0 {
		q.inFlight++
		q.notifyLocked()
		q.mu.Unlock()
		return nil
	}
	w := &waiter{grant: make(chan struct{})}
	q.waiters = append(q.waiters, w)
	q.notifyLocked()
	q.mu.Unlock()

	select {
	case <-w.grant:
		return nil
	case <-ctx.Done():
		q.mu.Lock()
		for i, queued := range q.waiters {
			if queued == w {
				q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
				q.notifyLocked()
				q.mu.Unlock()
				return ctx.Err()
			}
		}
		q.mu.Unlock()
		// The grant raced the cancellation and already arrived: the slot is
		// ours, so hand it straight back to the next waiter.
		q.Release()
		return ctx.Err()
	}
}

// Run acquires a slot, executes fn, and releases the slot when fn returns.
func (q *Queue) Run(ctx context.Context, fn func(context.Context) error) error {
	if err := q.Acquire(ctx); err != nil {
		return err
	}
	defer q.Release()
	return fn(ctx)
}

// Release returns a slot to the queue, waking the oldest waiter if any.
func (q *Queue) Release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.waiters) > 0 {
		w := q.waiters[0]
		q.waiters = q.waiters[1:]
		close(w.grant)
		q.notifyLocked()
		return
	}
	if q.inFlight > 0 {
		q.inFlight--
	}
	q.notifyLocked()
}

func (q *Queue) notifyLocked() {
	if q.onState != nil {
		q.onState(q.inFlight, len(q.waiters))
	}
}
