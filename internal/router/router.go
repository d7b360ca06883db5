// Package router implements the Router actor, spec.md §4.3: a device that
// multiplexes an ARP resolver, an IP forwarder, a BGP speaker, and a RIB
// manager over a set of ports. Grounded on the teacher's goroutine-per-work-
// source fan-in into one mailbox channel (cmd/rib-ingester's consumer
// goroutines feeding a single processing loop), adapted here so that each
// port's Endpoint.Recv runs in its own goroutine and feeds the router's
// single command-processing loop — the actor may process one message at a
// time with no internal locking, per spec.md §5.
package router

import (
	"context"
	"encoding/binary"
	"net/netip"

	"go.uber.org/zap"

	"github.com/routesim/netsim/internal/bgp"
	"github.com/routesim/netsim/internal/logging"
	"github.com/routesim/netsim/internal/rib"
	"github.com/routesim/netsim/internal/topology"
	"github.com/routesim/netsim/internal/transport"
)

// initialTTL is used for datagrams this router originates itself (ICMP
// echo requests, BGP messages); spec.md models TTL exhaustion only for
// transit forwarding, so origination starts from a value large enough that
// no topology in scope can exhaust it.
const initialTTL = 64

// sessionState is one configured BGP session as seen from this router,
// spec.md §4.4, plus the directory-derived facts (remote AS, remote
// loopback) needed to build and address wire messages.
type sessionState struct {
	*bgp.Session
	remoteAS       int
	remoteLoopback netip.Addr
}

// portFrame is one inbound frame tagged with the port it arrived on; every
// port's receive goroutine fans into the router's single frames channel.
type portFrame struct {
	portID int
	frame  transport.Frame
}

// LocalPeer is another router directly reachable from this router over one
// port without crossing a third router — either the other end of a direct
// link, or a fellow member of a switched broadcast domain this port leads
// into. The controller computes these from the topology graph once, since
// only it has the whole-graph view needed to trace a broadcast domain
// through chained switches. Installing one /32-equivalent connected route
// per LocalPeer (rather than treating the whole AS /24 as always-local)
// keeps the router's own loopback authoritative for its /24 connected
// route, per spec.md invariant 1, while still letting longest-prefix-match
// pick the more specific per-peer route for actual forwarding.
type LocalPeer struct {
	Loopback netip.Addr
	Port     int
}

// Router is one router actor. All of its fields below Run are touched only
// from the single goroutine running Run — the per-actor no-locks property
// spec.md §5 requires.
type Router struct {
	spec topology.RouterSpec
	dir  *Directory
	sink *logging.Sink

	ports map[int]*Port

	arpCache    map[int]map[string]int // portID -> ip -> device id
	arpPending  map[int]map[string][]transport.IPFrame
	arpInFlight map[int]map[string]bool

	rib      *rib.RIB
	bgpTable *bgp.Table
	sessions map[string]*sessionState // remote router name -> session

	pendingPings map[uint32]chan<- PingResult
	nextEcho     uint32

	loopback        netip.Addr
	connectedPrefix netip.Prefix
	bgpID           uint32
	localPeers      []LocalPeer

	cmds   chan Command
	frames chan portFrame
}

// New constructs a Router for spec, with one sessionState per BGP session
// spec.md §3 declares involving it. Ports are attached afterward via
// AddPort, before Run is called.
func New(spec topology.RouterSpec, sessions []topology.SessionSpec, localPeers []LocalPeer, dir *Directory, sink *logging.Sink) *Router {
	loopback := netip.MustParseAddr(topology.LoopbackIP(spec.AS, spec.ID))
	r := &Router{
		spec:            spec,
		dir:             dir,
		sink:            sink.Named(spec.Name),
		ports:           make(map[int]*Port),
		arpCache:        make(map[int]map[string]int),
		arpPending:      make(map[int]map[string][]transport.IPFrame),
		arpInFlight:     make(map[int]map[string]bool),
		rib:             rib.New(),
		bgpTable:        bgp.NewTable(),
		sessions:        make(map[string]*sessionState),
		pendingPings:    make(map[uint32]chan<- PingResult),
		loopback:        loopback,
		connectedPrefix: netip.MustParsePrefix(topology.RouterPrefix(spec.AS)),
		bgpID:           bgpIDFromLoopback(loopback),
		localPeers:      localPeers,
		cmds:            make(chan Command, 16),
		frames:          make(chan portFrame, 64),
	}
	for _, s := range sessions {
		if s.A != spec.Name && s.B != spec.Name {
			continue
		}
		remote := s.Other(spec.Name)
		remoteSpec, ok := dir.ByName(remote)
		if !ok {
			continue
		}
		rel := s.LocalRelFor(spec.Name)
		r.sessions[remote] = &sessionState{
			Session:        bgp.NewSession(remote, rel),
			remoteAS:       remoteSpec.AS,
			remoteLoopback: netip.MustParseAddr(topology.LoopbackIP(remoteSpec.AS, remoteSpec.ID)),
		}
	}
	return r
}

func bgpIDFromLoopback(ip netip.Addr) uint32 {
	b := ip.As4()
	return binary.BigEndian.Uint32(b[:])
}

func (r *Router) Name() string { return r.spec.Name }

// AddPort attaches ep as port id, with the given cost and kind. Must be
// called before Run.
func (r *Router) AddPort(id int, kind Kind, cost int, ep *transport.Endpoint) {
	r.ports[id] = &Port{ID: id, Kind: kind, Cost: cost, Endpoint: ep}
	r.arpCache[id] = make(map[string]int)
	r.arpPending[id] = make(map[string][]transport.IPFrame)
	r.arpInFlight[id] = make(map[string]bool)
}

// Commands returns the channel the controller sends Commands on.
func (r *Router) Commands() chan<- Command { return r.cmds }

// Run is the router's actor loop: one goroutine per port feeds the shared
// frames mailbox; Run itself processes frames and commands one at a time.
func (r *Router) Run(ctx context.Context) {
	r.installConnected()

	for _, p := range r.ports {
		go r.recvLoop(ctx, p)
	}

	for name, sess := range r.sessions {
		remoteID := bgpIDFromLoopback(sess.remoteLoopback)
		if bgp.ActivelyOpens(r.bgpID, remoteID) {
			sess.State = bgp.StateOpenSent
			r.sendOpen(ctx, name, sess)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-r.cmds:
			r.handleCommand(ctx, cmd)
		case pf := <-r.frames:
			r.handleFrame(ctx, pf.portID, pf.frame)
		}
	}
}

func (r *Router) recvLoop(ctx context.Context, p *Port) {
	for {
		f, err := p.Endpoint.Recv(ctx)
		if err != nil {
			return
		}
		select {
		case r.frames <- portFrame{portID: p.ID, frame: f}:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Router) installConnected() {
	r.rib.Install(&rib.Route{
		Prefix:  r.connectedPrefix,
		NextHop: r.loopback,
		Port:    rib.PortLoopback,
		Source:  rib.SourceConnected,
	})
	for _, peer := range r.localPeers {
		r.rib.Install(&rib.Route{
			Prefix:  netip.PrefixFrom(peer.Loopback, peer.Loopback.BitLen()),
			NextHop: peer.Loopback,
			Port:    peer.Port,
			Source:  rib.SourceConnected,
		})
	}
}

func (r *Router) handleFrame(ctx context.Context, portID int, f transport.Frame) {
	switch v := f.(type) {
	case transport.EthernetFrame:
		if v.DstDeviceID != -1 && v.DstDeviceID != r.spec.ID {
			return
		}
		r.dispatchPayload(ctx, portID, v.Payload)
	case transport.ARPFrame, transport.IPFrame:
		r.dispatchPayload(ctx, portID, f)
	case transport.BPDUFrame:
		// Routers don't run STP; only switches do.
	}
}

func (r *Router) dispatchPayload(ctx context.Context, portID int, f transport.Frame) {
	switch v := f.(type) {
	case transport.ARPFrame:
		r.handleARP(ctx, portID, v)
	case transport.IPFrame:
		r.handleIP(ctx, portID, v)
	}
}

// emit sends f out port, wrapping it in an EthernetFrame addressed to
// dstDeviceID when the port is switched; -1 means flood/broadcast.
func (r *Router) emit(ctx context.Context, port *Port, dstDeviceID int, f transport.Frame) {
	wire := f
	if port.Kind == Switched {
		wire = transport.EthernetFrame{SrcDeviceID: r.spec.ID, DstDeviceID: dstDeviceID, Payload: f}
	}
	if err := port.Endpoint.Send(ctx, wire); err != nil {
		r.sink.Debug("send failed", zap.Int("port", port.ID), zap.Error(err))
	}
}
