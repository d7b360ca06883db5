package transport

import (
	"context"
	"sync/atomic"
	"time"
)

// Counter is the distributed in-flight message counter spec.md §4.6
// describes as "a deterministic way to detect quiescence": every send
// increments it, every receive decrements it. Quiescence is counter == 0
// and no pending ARP timers. Modeled on the teacher's atomic.Bool "joined"
// flag (internal/kafka.StateConsumer) — same idiom, a single atomic word
// shared across goroutines with no surrounding lock.
type Counter struct {
	n atomic.Int64
}

func (c *Counter) Inc() { c.n.Add(1) }
func (c *Counter) Dec() { c.n.Add(-1) }

// Zero reports whether no message is currently in flight on this counter.
func (c *Counter) Zero() bool { return c.n.Load() == 0 }

// Load returns the current in-flight count, for metrics/debugging.
func (c *Counter) Load() int64 { return c.n.Load() }

// AwaitQuiescence polls the counter until it reads zero for debounce
// consecutive samples interval apart, the controller's logical-tick
// substitute for spec.md §4.6's "all actor in-queues empty and all actors
// idle for one full scheduling round": a single zero reading can be
// transient (an actor has pulled a message off a Link but not yet finished
// reacting to it), so requiring several consecutive zero readings is the
// debounce that makes the signal trustworthy without wall-clock timers.
func (c *Counter) AwaitQuiescence(ctx context.Context, debounce int, interval time.Duration) error {
	stable := 0
	for stable < debounce {
		if c.Zero() {
			stable++
		} else {
			stable = 0
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
