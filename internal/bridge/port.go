package bridge

import "github.com/routesim/netsim/internal/transport"

// Role is a port's current Spanning Tree role, spec.md §4.2.
type Role int

const (
	RoleDesignated Role = iota
	RoleRoot
	RoleBlocking
)

func (r Role) String() string {
	switch r {
	case RoleRoot:
		return "root"
	case RoleBlocking:
		return "blocking"
	default:
		return "designated"
	}
}

// port is one of the switch's interfaces plus its STP bookkeeping: the best
// BPDU ever received on it (spec.md §4.2, "each port remembers the best
// BPDU it has seen") and the role the last recompute assigned it.
type port struct {
	id       int
	cost     int
	endpoint *transport.Endpoint

	role     Role
	bestBPDU transport.BPDUFrame
	hasBPDU  bool
}
