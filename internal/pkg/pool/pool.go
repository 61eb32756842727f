// Package pool provides a fixed-size worker pool for dispatching blocking
// subprocess calls without unbounded goroutine fan-out.
package pool

import (
	"context"
	"sync"
)

// Pool bounds the number of tasks running concurrently. Submission blocks
// until a slot frees up (or the context is canceled), which gives callers
// natural backpressure.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// New creates a pool with the given number of worker slots. Sizes below one
// are coerced to one.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Submit runs fn on its own goroutine once a slot is available. It returns
// ctx.Err() without running fn when the context is canceled first.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		fn()
	}()
	return nil
}

// Run executes fn synchronously inside a pool slot, blocking the caller until
// the slot is acquired and fn returns. This is the dispatch path for call
// sites that need a stable sequential order.
func (p *Pool) Run(ctx context.Context, fn func()) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()
	fn()
	return nil
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
