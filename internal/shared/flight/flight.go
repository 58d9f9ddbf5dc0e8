// Package flight deduplicates concurrent function calls that share a key.
// At most one execution per key is in flight at a time; callers that arrive
// while one is running receive that execution's result. Results are never
// reused after an execution settles, so a later call runs the function again.
package flight

import (
	"context"
	"sync"
)

type call[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Group deduplicates calls by key. The zero value is ready to use.
type Group[T any] struct {
	mu    sync.Mutex
	calls map[string]*call[T]
}

// NewGroup returns an empty group.
func NewGroup[T any]() *Group[T] {
	return &Group[T]{}
}

// Do executes fn under key, unless an execution for key is already in flight,
// in which case it waits for that execution and returns its value and error.
// fn runs on the goroutine of the first arrival with that caller's context,
// so every sharer sees the same outcome, including an error caused by the
// first caller's cancellation. A waiting caller whose own ctx ends first
// gets its ctx error instead.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call[T])
	}
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	c := &call[T]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn(ctx)

	g.mu.Lock()
	// Reset may have replaced the table while fn ran; remove the entry only
	// if it is still ours. Removal happens before close so that a caller
	// arriving after settlement always starts a fresh execution.
	if cur, ok := g.calls[key]; ok && cur == c {
		delete(g.calls, key)
	}
	g.mu.Unlock()
	close(c.done)

	return c.val, c.err
}

// Reset forgets all in-flight executions. Executions already running complete
// and deliver results to their existing waiters, but callers arriving after
// Reset start fresh executions.
func (g *Group[T]) Reset() {
	g.mu.Lock()
	g.calls = nil
	g.mu.Unlock()
}
