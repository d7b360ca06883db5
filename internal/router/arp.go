package router

import (
	"context"

	"go.uber.org/zap"

	"github.com/routesim/netsim/internal/topology"
	"github.com/routesim/netsim/internal/transport"
)

// resolveAndSend looks up nextHop in the egress port's ARP cache; on a hit
// it emits frame immediately, on a miss it parks frame (spec.md §5's
// "parks the originating IP frame keyed by (port, target IP)") and
// broadcasts an ARP request if one isn't already outstanding.
func (r *Router) resolveAndSend(ctx context.Context, portID int, nextHop string, frame transport.IPFrame) {
	port, ok := r.ports[portID]
	if !ok {
		return
	}
	if devID, ok := r.arpCache[portID][nextHop]; ok {
		r.emit(ctx, port, devID, frame)
		return
	}

	r.arpPending[portID][nextHop] = append(r.arpPending[portID][nextHop], frame)
	if r.arpInFlight[portID][nextHop] {
		return
	}
	r.arpInFlight[portID][nextHop] = true
	req := transport.ARPFrame{
		Request:      true,
		SenderIP:     r.loopback.String(),
		SenderDevice: r.spec.ID,
		TargetIP:     nextHop,
	}
	r.sink.Event(topology.CategoryARP, "arp request", zap.Int("port", portID), zap.String("target", nextHop))
	r.emit(ctx, port, -1, req)
}

func (r *Router) handleARP(ctx context.Context, portID int, f transport.ARPFrame) {
	port, ok := r.ports[portID]
	if !ok {
		return
	}

	if f.Request {
		if f.TargetIP != r.loopback.String() {
			return
		}
		r.arpCache[portID][f.SenderIP] = f.SenderDevice
		reply := transport.ARPFrame{
			Request:      false,
			SenderIP:     r.loopback.String(),
			SenderDevice: r.spec.ID,
			TargetIP:     f.SenderIP,
		}
		r.sink.Event(topology.CategoryARP, "arp reply", zap.Int("port", portID), zap.String("to", f.SenderIP))
		r.emit(ctx, port, f.SenderDevice, reply)
		return
	}

	if f.TargetIP != r.loopback.String() {
		return
	}
	r.arpCache[portID][f.SenderIP] = f.SenderDevice
	delete(r.arpInFlight[portID], f.SenderIP)
	pending := r.arpPending[portID][f.SenderIP]
	delete(r.arpPending[portID], f.SenderIP)
	for _, pf := range pending {
		r.emit(ctx, port, f.SenderDevice, pf)
	}
}
