package router

import (
	"context"
	"net/netip"

	"go.uber.org/zap"

	"github.com/routesim/netsim/internal/rib"
	"github.com/routesim/netsim/internal/topology"
	"github.com/routesim/netsim/internal/transport"
)

// handleIP is the IP forwarder's entry point, spec.md §4.3: deliver to the
// local protocol handler if addressed to this router, else forward.
func (r *Router) handleIP(ctx context.Context, portID int, f transport.IPFrame) {
	if f.Dst == r.loopback.String() {
		r.deliverLocal(ctx, f)
		return
	}
	r.forwardTransit(ctx, f)
}

func (r *Router) forwardTransit(ctx context.Context, f transport.IPFrame) {
	ttl := f.TTL - 1
	if ttl <= 0 {
		r.sink.Event(topology.CategoryIP, "ttl exceeded", zap.String("src", f.Src), zap.String("dst", f.Dst))
		return
	}
	r.routeOut(ctx, transport.IPFrame{Src: f.Src, Dst: f.Dst, TTL: ttl, Payload: f.Payload})
}

// sendIP originates a new datagram from this router's own loopback.
func (r *Router) sendIP(ctx context.Context, dst string, payload transport.IPPayload) {
	r.routeOut(ctx, transport.IPFrame{Src: r.loopback.String(), Dst: dst, TTL: initialTTL, Payload: payload})
}

func (r *Router) routeOut(ctx context.Context, f transport.IPFrame) {
	addr, err := netip.ParseAddr(f.Dst)
	if err != nil {
		r.sink.Event(topology.CategoryIP, "bad destination address", zap.String("dst", f.Dst))
		return
	}
	route, ok := r.rib.Lookup(addr)
	if !ok {
		r.sink.Event(topology.CategoryIP, "no route to destination", zap.String("dst", f.Dst))
		return
	}
	if route.Port == rib.PortLoopback {
		// The destination matched only this router's own connected prefix
		// (no peer /32 covers it), so no port leads there; originated and
		// transit datagrams alike are dropped here without a log event.
		return
	}
	r.resolveAndSend(ctx, route.Port, route.NextHop.String(), f)
}
