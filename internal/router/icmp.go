package router

import (
	"context"
	"net/netip"

	"go.uber.org/zap"

	"github.com/routesim/netsim/internal/topology"
	"github.com/routesim/netsim/internal/transport"
)

// PingOutcome is the result of one ping action, spec.md §7.
type PingOutcome int

const (
	PingSuccess PingOutcome = iota
	PingUnreachable
	PingTimeout
)

func (o PingOutcome) String() string {
	switch o {
	case PingSuccess:
		return "success"
	case PingUnreachable:
		return "unreachable"
	case PingTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// PingResult is delivered on a PingCmd's Result channel once this router
// knows the outcome, or never, if the reply never arrives (the controller
// treats "still pending at quiescence" as PingTimeout, spec.md §5).
type PingResult struct {
	Outcome PingOutcome
}

func (r *Router) handlePing(ctx context.Context, cmd *PingCmd) {
	addr, err := netip.ParseAddr(cmd.Target)
	if err != nil {
		cmd.Result <- PingResult{Outcome: PingUnreachable}
		return
	}
	if _, ok := r.rib.Lookup(addr); !ok {
		r.sink.Event(topology.CategoryPing, "ping unreachable: no route", zap.String("target", cmd.Target))
		cmd.Result <- PingResult{Outcome: PingUnreachable}
		return
	}
	id := r.nextEcho
	r.nextEcho++
	r.pendingPings[id] = cmd.Result
	r.sink.Event(topology.CategoryPing, "ping sent", zap.String("target", cmd.Target), zap.Uint32("id", id))
	r.sendIP(ctx, cmd.Target, transport.ICMPEcho{Request: true, ID: id})
}

func (r *Router) handleICMP(ctx context.Context, src string, echo transport.ICMPEcho) {
	if echo.Request {
		r.sink.Event(topology.CategoryPing, "ping reply sent", zap.String("to", src), zap.Uint32("id", echo.ID))
		r.sendIP(ctx, src, transport.ICMPEcho{Request: false, ID: echo.ID})
		return
	}
	resultCh, ok := r.pendingPings[echo.ID]
	if !ok {
		return
	}
	delete(r.pendingPings, echo.ID)
	r.sink.Event(topology.CategoryPing, "ping succeeded", zap.String("from", src), zap.Uint32("id", echo.ID))
	resultCh <- PingResult{Outcome: PingSuccess}
}
