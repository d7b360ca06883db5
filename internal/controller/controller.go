// Package controller implements the outer driver, spec.md §4.6: it builds
// the actor graph from a validated topology, injects actions in order with
// a quiescence wait between each, and reports the final state. Grounded on
// internal/actor's bounded-pool device-running shape and, for the
// command/await-reply round trips to individual actors, the same request-
// then-wait-on-a-reply-channel pattern internal/router's own command
// handling already uses.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/routesim/netsim/internal/actor"
	"github.com/routesim/netsim/internal/bridge"
	"github.com/routesim/netsim/internal/logging"
	"github.com/routesim/netsim/internal/metrics"
	"github.com/routesim/netsim/internal/router"
	"github.com/routesim/netsim/internal/topology"
	"github.com/routesim/netsim/internal/transport"
)

// QuiescenceDebounce and QuiescenceInterval are the default parameters for
// transport.Counter.AwaitQuiescence between actions (spec.md §4.6's "wait
// for quiescence"). They're large enough to absorb the several message
// round trips a BGP session establishment or an STP recompute round can
// take without mistaking a brief lull for true quiescence.
const (
	QuiescenceDebounce = 6
	QuiescenceInterval = 2 * time.Millisecond
)

// Controller is one simulation run's outer driver.
type Controller struct {
	topo    *topology.Topology
	sink    *logging.Sink
	counter transport.Counter

	routers  map[string]*router.Router
	switches map[string]*bridge.Switch
}

// New builds the actor graph for topo: one Router per declared router, one
// Switch per declared switch, and a transport.Link wiring every declared
// LinkSpec, with each router's directly-reachable peers (spec.md §4.3)
// precomputed and handed in at construction. No actor goroutine is started
// yet; call Run to do that.
func New(topo *topology.Topology, sink *logging.Sink) *Controller {
	dir := router.NewDirectory(topo)
	edges := buildEdges(topo)
	peers := localPeersFor(topo, edges, dir)

	c := &Controller{
		topo:     topo,
		sink:     sink,
		routers:  make(map[string]*router.Router, len(topo.Routers)),
		switches: make(map[string]*bridge.Switch, len(topo.Switches)),
	}

	for _, rs := range topo.Routers {
		c.routers[rs.Name] = router.New(rs, topo.Sessions, peers[rs.Name], dir, sink)
	}
	for _, ss := range topo.Switches {
		c.switches[ss.Name] = bridge.New(ss, sink)
	}

	isRouter := make(map[string]bool, len(topo.Routers))
	for _, r := range topo.Routers {
		isRouter[r.Name] = true
	}

	for _, e := range edges {
		epA, epB := transport.NewLink(&c.counter)
		c.attachPort(e.a, e.aPort, isRouter[e.b], epA, e.cost)
		c.attachPort(e.b, e.bPort, isRouter[e.a], epB, e.cost)
	}

	return c
}

func (c *Controller) attachPort(name string, port int, neighborIsRouter bool, ep *transport.Endpoint, cost int) {
	if r, ok := c.routers[name]; ok {
		kind := router.Switched
		if neighborIsRouter {
			kind = router.Direct
		}
		r.AddPort(port, kind, cost, ep)
		return
	}
	if s, ok := c.switches[name]; ok {
		s.AddPort(port, cost, ep)
	}
}

// Run spawns every actor, waits for initial quiescence, applies every
// configured action in order (spec.md §4.6 step 4), and returns the final
// snapshot once the run has gone quiescent for the last time. It shuts
// every actor down before returning.
func (c *Controller) Run(parent context.Context) (*Result, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pool := actor.NewPool(ctx, 0)
	for _, r := range c.routers {
		pool.Spawn(r)
	}
	for _, s := range c.switches {
		pool.Spawn(s)
	}

	result, runErr := c.drive(ctx)

	cancel()
	_ = pool.Wait()

	return result, runErr
}

func (c *Controller) drive(ctx context.Context) (*Result, error) {
	if err := c.awaitQuiescence(ctx, "initial"); err != nil {
		return nil, fmt.Errorf("initial quiescence: %w", err)
	}

	var pings []PingOutcome
	for _, action := range c.topo.Actions {
		var pendingPing <-chan router.PingResult
		var pendingSpec topology.PingSpec
		label := "announce"

		switch {
		case action.AnnouncePrefix != nil:
			c.applyAnnounce(ctx, action.AnnouncePrefix)
		case action.Ping != nil:
			label = "ping"
			pendingSpec = *action.Ping
			pendingPing = c.issuePing(ctx, pendingSpec)
		}

		if err := c.awaitQuiescence(ctx, label); err != nil {
			return nil, fmt.Errorf("post-action quiescence: %w", err)
		}

		if pendingPing != nil {
			// spec.md §5: "a ping is reported as failed if the echo reply
			// has not returned before the next quiescence" — the result
			// channel is buffered, so a non-blocking read here either
			// finds the reply that already arrived or proves it didn't.
			outcome := router.PingResult{Outcome: router.PingTimeout}
			select {
			case res := <-pendingPing:
				outcome = res
			default:
			}
			metrics.PingOutcomesTotal.WithLabelValues(pendingSpec.From, pendingSpec.Target, outcome.Outcome.String()).Inc()
			pings = append(pings, PingOutcome{From: pendingSpec.From, Target: pendingSpec.Target, Result: outcome})
		}
	}

	result := &Result{Pings: pings}
	for _, r := range c.routers {
		result.Routers = append(result.Routers, c.snapshotRouter(ctx, r))
	}
	for _, s := range c.switches {
		result.Switches = append(result.Switches, c.snapshotSwitch(ctx, s))
	}
	return result, nil
}

func (c *Controller) awaitQuiescence(ctx context.Context, action string) error {
	start := time.Now()
	err := c.counter.AwaitQuiescence(ctx, QuiescenceDebounce, QuiescenceInterval)
	metrics.QuiescenceRoundDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	return err
}

func (c *Controller) applyAnnounce(ctx context.Context, entries []topology.AnnounceEntry) {
	for _, e := range entries {
		if e.IsAS() {
			for _, rs := range c.topo.Routers {
				if rs.AS == e.AS {
					c.originate(ctx, rs.Name)
				}
			}
			continue
		}
		c.originate(ctx, e.RouterName)
	}
}

func (c *Controller) originate(ctx context.Context, name string) {
	r, ok := c.routers[name]
	if !ok {
		return
	}
	done := make(chan struct{})
	select {
	case r.Commands() <- router.Command{Originate: &router.OriginateCmd{Done: done}}:
	case <-ctx.Done():
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (c *Controller) issuePing(ctx context.Context, spec topology.PingSpec) <-chan router.PingResult {
	resultCh := make(chan router.PingResult, 1)
	r, ok := c.routers[spec.From]
	if !ok {
		resultCh <- router.PingResult{Outcome: router.PingUnreachable}
		return resultCh
	}
	select {
	case r.Commands() <- router.Command{Ping: &router.PingCmd{Target: spec.Target, Result: resultCh}}:
	case <-ctx.Done():
	}
	return resultCh
}

func (c *Controller) snapshotRouter(ctx context.Context, r *router.Router) router.Snapshot {
	ch := make(chan router.Snapshot, 1)
	select {
	case r.Commands() <- router.Command{Snapshot: &router.SnapshotCmd{Result: ch}}:
	case <-ctx.Done():
		return router.Snapshot{}
	}
	select {
	case snap := <-ch:
		metrics.RIBEntries.WithLabelValues(snap.Name).Set(float64(len(snap.Routes)))
		return snap
	case <-ctx.Done():
		return router.Snapshot{}
	}
}

func (c *Controller) snapshotSwitch(ctx context.Context, s *bridge.Switch) bridge.Snapshot {
	ch := make(chan bridge.Snapshot, 1)
	select {
	case s.Commands() <- bridge.Command{Snapshot: &bridge.SnapshotCmd{Result: ch}}:
	case <-ctx.Done():
		return bridge.Snapshot{}
	}
	select {
	case snap := <-ch:
		metrics.STPConvergenceRounds.WithLabelValues(snap.Name).Observe(float64(snap.Rounds))
		return snap
	case <-ctx.Done():
		return bridge.Snapshot{}
	}
}
