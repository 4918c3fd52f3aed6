// Package ui provides the single execution context every screen runs on
// and lifetime-scoped delivery of asynchronous results.
package ui

import (
	"context"
	"sync"
	"time"
)

// Dispatcher posts work onto the UI execution context.
type Dispatcher interface {
	Post(fn func())
}

// Queue is a FIFO of posted functions. Whoever drains it is the UI thread.
type Queue struct {
	mu     sync.Mutex
	fns    []func()
	signal chan struct{}
	closed bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// Post enqueues fn. Posts after Close are dropped.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.fns = append(q.fns, fn)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Flush runs queued functions, including those posted while flushing,
// until the queue is empty. Returns how many ran.
func (q *Queue) Flush() int {
	n := 0
	for {
		q.mu.Lock()
		if len(q.fns) == 0 {
			q.mu.Unlock()
			return n
		}
		fn := q.fns[0]
		q.fns[0] = nil
		q.fns = q.fns[1:]
		q.mu.Unlock()

		fn()
		n++
	}
}

// RunUntil drains the queue on the calling goroutine until cond holds or
// timeout elapses. cond is evaluated between posted functions.
func (q *Queue) RunUntil(cond func() bool, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.Flush()
		if cond() {
			return true
		}
		select {
		case <-q.signal:
		case <-deadline.C:
			q.Flush()
			return cond()
		}
	}
}

// Close drops pending functions and refuses new ones.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.fns = nil
}

// Loop drains a Queue on a dedicated goroutine.
type Loop struct {
	*Queue
	done chan struct{}
	once sync.Once
}

// NewLoop creates a loop; call Run to start it.
func NewLoop() *Loop {
	return &Loop{
		Queue: NewQueue(),
		done:  make(chan struct{}),
	}
}

// Run executes posted functions in order until ctx ends or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		l.Flush()
		select {
		case <-ctx.Done():
			l.Close()
			return
		case <-l.done:
			l.Close()
			return
		case <-l.signal:
		}
	}
}

// Call runs fn on the loop and waits for it to finish.
// It must not be used from the loop goroutine itself.
func (l *Loop) Call(fn func()) {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
	case <-l.done:
	}
}

// Stop terminates Run.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}
