// Package actor provides the minimal per-device scheduling runtime: a
// bounded worker pool that runs each device's actor loop, and the
// command/shutdown handshake the controller uses to drive and drain them.
// Grounded on the teacher's goroutine + sync.WaitGroup choreography in
// cmd/rib-ingester/main.go's runServe (launch N pipeline goroutines, cancel
// a shared context, wait for a drain channel before returning) — here
// formalized with golang.org/x/sync/errgroup and golang.org/x/sync/semaphore
// instead of hand-rolled WaitGroups, since the actor pool is the one place
// in this repo where bounding concurrency (spec.md §5's "worker pool") is
// itself a first-class requirement rather than an implementation detail.
package actor

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Device is anything the pool can run: Router and Switch both implement it.
// Run returns as soon as it observes that ctx is cancelled; frames and
// commands still queued in its mailbox at that point are not processed.
type Device interface {
	Name() string
	Run(ctx context.Context)
}

// Pool bounds how many device actors run concurrently. With a capacity <= 0
// the pool is unbounded (every device gets its own goroutine immediately),
// which is the right default for the small topologies this simulator
// targets; a positive capacity caps it, exercising the
// golang.org/x/sync/semaphore-backed scheduling spec.md §5 describes.
type Pool struct {
	sem *semaphore.Weighted
	eg  *errgroup.Group
	ctx context.Context
}

// NewPool creates a pool bound to ctx (from errgroup.WithContext), cancelled
// when a spawned goroutine returns an error (only a failed slot acquisition
// does) or when the caller cancels the parent context. capacity <= 0 means
// unbounded.
func NewPool(ctx context.Context, capacity int64) *Pool {
	eg, gctx := errgroup.WithContext(ctx)
	p := &Pool{eg: eg, ctx: gctx}
	if capacity > 0 {
		p.sem = semaphore.NewWeighted(capacity)
	}
	return p
}

// Spawn schedules d to run and returns at once; when the pool is bounded,
// d's goroutine waits for a pool slot before Run starts. The device's own
// Run loop is cooperative
// (it suspends on empty mailboxes per spec.md §5) rather than blocking the
// scheduler.
func (p *Pool) Spawn(d Device) {
	p.eg.Go(func() error {
		if p.sem != nil {
			if err := p.sem.Acquire(p.ctx, 1); err != nil {
				return err
			}
			defer p.sem.Release(1)
		}
		d.Run(p.ctx)
		return nil
	})
}

// Wait blocks until every spawned device's Run has returned.
func (p *Pool) Wait() error {
	return p.eg.Wait()
}
