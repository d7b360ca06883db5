package bgp

import "github.com/routesim/netsim/internal/topology"

// State is a session's FSM state, spec.md §4.4. No holdtime/keepalive is
// modeled: once Established, a session stays Established for the run.
type State int

const (
	StateIdle State = iota
	StateOpenSent
	StateEstablished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateOpenSent:
		return "OpenSent"
	case StateEstablished:
		return "Established"
	default:
		return "Unknown"
	}
}

// Session is one configured BGP session as seen from the local router's
// side, spec.md §3's BGP session descriptor plus the mutable FSM state.
type Session struct {
	Remote    string
	LocalRel  topology.LocalRel
	RemoteID  uint32 // remote BGP id, learned from its OPEN (0 until then)
	State     State
	Advertised map[string]bool // prefixes currently advertised to this peer
}

func NewSession(remote string, rel topology.LocalRel) *Session {
	return &Session{
		Remote:     remote,
		LocalRel:   rel,
		Advertised: make(map[string]bool),
	}
}

// ActivelyOpens reports whether the local router should send the first
// OPEN, per spec.md §4.4: "the router with the numerically smaller BGP id
// actively opens".
func ActivelyOpens(localID, remoteID uint32) bool {
	return localID < remoteID
}
