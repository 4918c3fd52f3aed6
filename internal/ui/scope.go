package ui

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Result is the outcome of an asynchronous operation.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Scope ties continuations to the lifetime of one screen. Anything
// delivered after Close is dropped.
type Scope struct {
	d      Dispatcher
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	mu     sync.Mutex
	timers []*time.Timer
}

// NewScope creates an open scope posting to d.
func NewScope(d Dispatcher) *Scope {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scope{d: d, ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Closed reports whether Close was called.
func (s *Scope) Closed() bool {
	return s.closed.Load()
}

// Post runs fn on the UI context if the scope is still open by then.
func (s *Scope) Post(fn func()) {
	if s.Closed() {
		return
	}
	s.d.Post(func() {
		if s.Closed() {
			return
		}
		fn()
	})
}

// After posts fn once delay has elapsed, unless the scope closes first.
func (s *Scope) After(delay time.Duration, fn func()) {
	if s.Closed() {
		return
	}
	t := time.AfterFunc(delay, func() { s.Post(fn) })

	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
}

// Close cancels pending operations. Safe to call more than once.
func (s *Scope) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.cancel()

	s.mu.Lock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
	s.mu.Unlock()
}

// Go runs op off the UI context and delivers its result to done on the UI
// context, exactly once, unless the scope has closed in the meantime.
func Go[T any](s *Scope, op func(ctx context.Context) (T, error), done func(Result[T])) {
	if s.Closed() {
		return
	}
	go func() {
		value, err := op(s.ctx)
		s.Post(func() {
			done(Result[T]{Value: value, Err: err})
		})
	}()
}
