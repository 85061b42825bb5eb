package engine

import (
	"sync"
	"sync/atomic"
)

// Ref is a reference-counted handle to a resource shared between
// goroutines. The resource stays valid while at least one handle holds it.
type Ref[T any] struct {
	value T
	refs  *atomic.Int32
	held  atomic.Bool
}

// NewRef wraps v in a handle holding the first reference.
func NewRef[T any](v T) *Ref[T] {
	refs := new(atomic.Int32)
	refs.Store(1)
	r := &Ref[T]{value: v, refs: refs}
	r.held.Store(true)
	return r
}

// Clone returns a new handle to the same resource.
func (r *Ref[T]) Clone() *Ref[T] {
	r.refs.Add(1)
	c := &Ref[T]{value: r.value, refs: r.refs}
	c.held.Store(true)
	return c
}

// Get returns the resource.
func (r *Ref[T]) Get() T {
	return r.value
}

// Valid reports whether this handle still holds its reference.
func (r *Ref[T]) Valid() bool {
	return r != nil && r.held.Load()
}

// Release drops this handle's reference and reports whether it was the last.
// Releasing twice is a no-op.
func (r *Ref[T]) Release() bool {
	if !r.held.CompareAndSwap(true, false) {
		return false
	}
	return r.refs.Add(-1) == 0
}

// Refs returns the number of live handles.
func (r *Ref[T]) Refs() int {
	return int(r.refs.Load())
}

// TerminationFlag is a write-once boolean shared across goroutines.
type TerminationFlag struct {
	set  atomic.Bool
	once sync.Once
	done chan struct{}
}

// NewTerminationFlag returns an unset flag.
func NewTerminationFlag() *TerminationFlag {
	return &TerminationFlag{done: make(chan struct{})}
}

// Set flips the flag. Later calls do nothing.
func (f *TerminationFlag) Set() {
	f.once.Do(func() {
		f.set.Store(true)
		close(f.done)
	})
}

// IsSet reports whether Set has been called.
func (f *TerminationFlag) IsSet() bool {
	return f.set.Load()
}

// Done is closed once the flag is set.
func (f *TerminationFlag) Done() <-chan struct{} {
	return f.done
}

// Async is a queue of pending background tasks. Readiness polls check
// Busy instead of blocking.
type Async struct {
	wg      sync.WaitGroup
	pending atomic.Int32
	started atomic.Bool
}

// NewAsync returns an initialized task queue.
func NewAsync() *Async {
	a := &Async{}
	a.started.Store(true)
	return a
}

// Go runs fn on its own goroutine and tracks it until it returns.
func (a *Async) Go(fn func()) {
	a.pending.Add(1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.pending.Add(-1)
		fn()
	}()
}

// Busy reports whether any task is still running.
func (a *Async) Busy() bool {
	return a.pending.Load() > 0
}

// Pending returns the number of running tasks.
func (a *Async) Pending() int {
	return int(a.pending.Load())
}

// Wait blocks until every task has returned.
func (a *Async) Wait() {
	a.wg.Wait()
}

// Valid reports whether the queue was created by NewAsync.
func (a *Async) Valid() bool {
	return a != nil && a.started.Load()
}
