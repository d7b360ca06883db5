package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/routesim/netsim/internal/topology"
	"github.com/routesim/netsim/internal/transport"
)

// handleBPDU records bpdu as the best ever seen on portID if it beats
// whatever was recorded there before (spec.md §4.2's "each port remembers
// the best BPDU it has seen"), then recomputes roles. The topology here is
// static — no link ever fails or changes cost — so "best ever seen" never
// needs to be displaced by a later, worse BPDU from the same neighbor; that
// displacement only matters for the root-failure case this simulator does
// not model.
func (s *Switch) handleBPDU(ctx context.Context, portID int, bpdu transport.BPDUFrame) {
	p, ok := s.ports[portID]
	if !ok {
		return
	}
	if !p.hasBPDU || bpdu.Less(p.bestBPDU) {
		p.bestBPDU = bpdu
		p.hasBPDU = true
	}
	s.recomputeAndMaybeEmit(ctx)
}

// recomputeAndMaybeEmit runs one STP recompute round, spec.md §4.2's
// decision process: pick the best root candidate across every port's best
// received BPDU plus the switch's own claim to be root, assign port roles
// from that candidate, and emit a new round of BPDUs only if a port role or
// the switch's root claim (root id, root path cost) changed since the last
// round. A round with nothing to report emits nothing, so a switch falls
// silent once its state stops changing.
func (s *Switch) recomputeAndMaybeEmit(ctx context.Context) {
	best := transport.BPDUFrame{RootID: s.spec.ID, RootPathCost: 0, SenderID: s.spec.ID, SenderPortID: -1}
	rootPort := -1
	for _, p := range s.ports {
		if !p.hasBPDU {
			continue
		}
		candidate := transport.BPDUFrame{
			RootID:       p.bestBPDU.RootID,
			RootPathCost: p.bestBPDU.RootPathCost + p.cost,
			SenderID:     p.bestBPDU.SenderID,
			SenderPortID: p.bestBPDU.SenderPortID,
		}
		if candidate.Less(best) {
			best = candidate
			rootPort = p.id
		}
	}

	changed := !s.initialized || best.RootID != s.rootID || best.RootPathCost != s.rootCost
	s.rootID = best.RootID
	s.rootCost = best.RootPathCost
	s.isRoot = rootPort == -1

	for id, p := range s.ports {
		var role Role
		if id == rootPort {
			role = RoleRoot
		} else {
			// The BPDU this switch would advertise on this port if it were
			// designated here. A port is designated when that beats
			// whatever the switch has received on it so far; otherwise a
			// superior neighbor already claims the designated role.
			advertised := transport.BPDUFrame{RootID: s.rootID, RootPathCost: s.rootCost, SenderID: s.spec.ID, SenderPortID: id}
			if !p.hasBPDU || advertised.Less(p.bestBPDU) {
				role = RoleDesignated
			} else {
				role = RoleBlocking
			}
		}
		if role != p.role {
			changed = true
		}
		p.role = role
	}

	if !changed {
		return
	}
	s.initialized = true
	s.emitBPDUs(ctx)
}

// emitBPDUs sends this switch's current best advertisement out every
// non-blocking port, including the root port: re-announcing the same claim
// back upstream is harmless (the neighbor's own compare against its better
// BPDU on that port just loses again), and keeping root/designated
// symmetric here avoids a separate code path for the root-port case.
func (s *Switch) emitBPDUs(ctx context.Context) {
	s.rounds++
	for id, p := range s.ports {
		if p.role == RoleBlocking {
			continue
		}
		bpdu := transport.BPDUFrame{RootID: s.rootID, RootPathCost: s.rootCost, SenderID: s.spec.ID, SenderPortID: id}
		if err := p.endpoint.Send(ctx, bpdu); err != nil {
			s.sink.Debug("bpdu send failed", zap.Int("port", id), zap.Error(err))
		}
	}
	s.sink.Event(topology.CategorySPT, "stp round",
		zap.Int("root_id", s.rootID), zap.Bool("is_root", s.isRoot), zap.Int("root_cost", s.rootCost))
}
