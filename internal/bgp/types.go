// Package bgp implements the BGP decision process, Gao-Rexford export
// policy, per-session FSM, and wire encoding spec.md §4.4 describes. The
// attribute type codes and AS_PATH segment layout are grounded on the
// teacher's internal/bgp/attributes.go and types.go, generalized from
// decode-only (the teacher only ever reads captured monitoring traffic)
// to encode+decode, since here BGP is live protocol traffic between
// simulated routers.
package bgp

import "github.com/routesim/netsim/internal/topology"

// BGP path attribute type codes (RFC 4271), same constants the teacher
// declares in internal/bgp/types.go; attributes the teacher supports that
// this simulator's policy never needs (MED, communities, MP_REACH_NLRI) are
// dropped rather than carried dead. ORIGIN is declared but never encoded.
const (
	AttrTypeOrigin    uint8 = 1
	AttrTypeASPath    uint8 = 2
	AttrTypeNextHop   uint8 = 3
	AttrTypeLocalPref uint8 = 5
)

// AS_PATH segment types (RFC 4271), same constants as the teacher.
const (
	ASPathSegmentSet      uint8 = 1
	ASPathSegmentSequence uint8 = 2
)

// BGP message types. The teacher only ever sees UPDATE (it taps monitoring
// traffic); this simulator is a real peer, so it needs the full set.
const (
	MsgTypeOpen         uint8 = 1
	MsgTypeUpdate       uint8 = 2
	MsgTypeNotification uint8 = 3
)

// BGPHeaderSize is marker(16) + length(2) + type(1), matching the teacher's
// BGPHeaderSize constant.
const BGPHeaderSize = 19

// LocalPref returns the LOCAL_PREF value attached on receipt for a session
// of the given local relationship, per spec.md §4.4 step 2.
func LocalPref(rel topology.LocalRel) uint32 {
	switch rel {
	case topology.LocalRelCustomer:
		return 200
	case topology.LocalRelPeer:
		return 100
	case topology.LocalRelProvider:
		return 50
	default:
		return 0
	}
}
