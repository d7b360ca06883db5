// Package bridge implements the Switch actor, spec.md §4.2: a layer-2
// bridge that runs the Spanning Tree Protocol to pick a loop-free forwarding
// topology, then floods non-BPDU frames across every non-blocking port.
// Grounded on internal/router's port-goroutines-fan-into-one-mailbox actor
// shape (cmd/rib-ingester's consumer-goroutines-feed-one-pipeline pattern),
// reused here verbatim since both actor kinds share the same single-
// goroutine-owns-all-state discipline spec.md §5 requires.
package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/routesim/netsim/internal/logging"
	"github.com/routesim/netsim/internal/topology"
	"github.com/routesim/netsim/internal/transport"
)

// portFrame is one inbound frame tagged with the port it arrived on.
type portFrame struct {
	portID int
	frame  transport.Frame
}

// Switch is one bridge actor. All fields are touched only from the single
// goroutine running Run.
type Switch struct {
	spec topology.SwitchSpec
	sink *logging.Sink

	ports map[int]*port

	rootID      int
	rootCost    int
	isRoot      bool
	initialized bool
	rounds      int

	cmds   chan Command
	frames chan portFrame
}

// New constructs a Switch for spec. Ports are attached afterward via
// AddPort, before Run is called.
func New(spec topology.SwitchSpec, sink *logging.Sink) *Switch {
	return &Switch{
		spec:   spec,
		sink:   sink.Named(spec.Name),
		ports:  make(map[int]*port),
		rootID: spec.ID,
		isRoot: true,
		cmds:   make(chan Command, 16),
		frames: make(chan portFrame, 64),
	}
}

func (s *Switch) Name() string { return s.spec.Name }

// AddPort attaches ep as port id, with the given STP cost. Must be called
// before Run.
func (s *Switch) AddPort(id int, cost int, ep *transport.Endpoint) {
	s.ports[id] = &port{id: id, cost: cost, endpoint: ep, role: RoleDesignated}
}

// Commands returns the channel the controller sends Commands on.
func (s *Switch) Commands() chan<- Command { return s.cmds }

// Run is the switch's actor loop: one goroutine per port feeds the shared
// frames mailbox; Run itself processes frames and commands one at a time,
// and drives STP convergence reactively off received BPDUs rather than off
// a wall-clock ticker (spec.md §9 open question (a): "any logically-
// quiescent tick scheme is acceptable").
func (s *Switch) Run(ctx context.Context) {
	for _, p := range s.ports {
		go s.recvLoop(ctx, p)
	}

	// First round: every port is a candidate designated port since no
	// neighbor BPDU has been seen yet, so this switch announces itself as
	// root on all of them.
	s.recomputeAndMaybeEmit(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.cmds:
			s.handleCommand(cmd)
		case pf := <-s.frames:
			s.handleFrame(ctx, pf.portID, pf.frame)
		}
	}
}

func (s *Switch) recvLoop(ctx context.Context, p *port) {
	for {
		f, err := p.endpoint.Recv(ctx)
		if err != nil {
			return
		}
		select {
		case s.frames <- portFrame{portID: p.id, frame: f}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Switch) handleFrame(ctx context.Context, portID int, f transport.Frame) {
	switch v := f.(type) {
	case transport.BPDUFrame:
		s.handleBPDU(ctx, portID, v)
	case transport.EthernetFrame:
		s.handleEthernet(ctx, portID, v)
	}
}

// handleEthernet floods v across every non-blocking port other than the
// one it arrived on, spec.md §4.2: "a blocking port drops all non-BPDU
// frames; other ports flood without learning addresses." There is no MAC
// learning table — every flood goes to every eligible port regardless of
// destination, matching spec.md's explicit non-goal of address learning.
func (s *Switch) handleEthernet(ctx context.Context, portID int, f transport.EthernetFrame) {
	in, ok := s.ports[portID]
	if !ok || in.role == RoleBlocking {
		s.sink.Debug("dropped frame on blocking port", zap.Int("port", portID))
		return
	}
	for id, p := range s.ports {
		if id == portID || p.role == RoleBlocking {
			continue
		}
		if err := p.endpoint.Send(ctx, f); err != nil {
			s.sink.Debug("flood send failed", zap.Int("port", id), zap.Error(err))
		}
	}
}
