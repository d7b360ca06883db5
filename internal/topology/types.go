// Package topology holds the immutable, validated description of a network
// that the simulation core consumes. Nothing in this package depends on how
// the description was produced — koanf/yaml decoding lives in
// internal/config, kept separate so the core never imports a config
// library directly.
package topology

import "fmt"

// Relationship is the kind of BGP session between two routers.
type Relationship int

const (
	RelProviderCustomer Relationship = iota // A is provider of B
	RelCustomerProvider                     // A is customer of B (mirror of above)
	RelPeer
	RelIBGP
)

func (r Relationship) String() string {
	switch r {
	case RelProviderCustomer:
		return "provider-of-customer"
	case RelCustomerProvider:
		return "customer-of-provider"
	case RelPeer:
		return "peer"
	case RelIBGP:
		return "ibgp"
	default:
		return "unknown"
	}
}

// RouterSpec is a router as declared in the topology input.
type RouterSpec struct {
	Name string
	ID   int
	AS   int
}

// SwitchSpec is a layer-2 bridge as declared in the topology input.
type SwitchSpec struct {
	Name string
	ID   int
}

// LinkSpec is a point-to-point connection between two devices, by name.
// Cost applies to the port created on each end for STP purposes; it
// defaults to 1 when zero.
type LinkSpec struct {
	A, B string
	Cost int
}

// SessionSpec is a configured BGP session descriptor between two routers.
type SessionSpec struct {
	A, B         string
	Relationship Relationship
}

// LocalRel is a router's own view of its relationship to the remote
// endpoint of one session, spec.md §3: "Each router's view of a session
// records the local relationship to the remote endpoint." Provider-customer
// is asymmetric, so A and B resolve a shared SessionSpec to different
// LocalRel values; peer and ibgp are symmetric.
type LocalRel int

const (
	LocalRelCustomer LocalRel = iota // the remote endpoint is our customer
	LocalRelProvider                 // the remote endpoint is our provider
	LocalRelPeer
	LocalRelIBGP
)

func (l LocalRel) String() string {
	switch l {
	case LocalRelCustomer:
		return "customer"
	case LocalRelProvider:
		return "provider"
	case LocalRelPeer:
		return "peer"
	case LocalRelIBGP:
		return "ibgp"
	default:
		return "unknown"
	}
}

// LocalRelFor resolves how router name's relationship to the other endpoint
// of s reads from name's own point of view. name must be s.A or s.B.
func (s SessionSpec) LocalRelFor(name string) LocalRel {
	switch s.Relationship {
	case RelPeer:
		return LocalRelPeer
	case RelIBGP:
		return LocalRelIBGP
	case RelProviderCustomer:
		// A is provider of B: B is A's customer.
		if name == s.A {
			return LocalRelCustomer
		}
		return LocalRelProvider
	case RelCustomerProvider:
		// A is customer of B: B is A's provider.
		if name == s.A {
			return LocalRelProvider
		}
		return LocalRelCustomer
	default:
		return LocalRelPeer
	}
}

// Other returns the name of the session endpoint that is not name.
func (s SessionSpec) Other(name string) string {
	if name == s.A {
		return s.B
	}
	return s.A
}

// AnnounceEntry is either a router name or an AS number (AS-wide announce).
type AnnounceEntry struct {
	RouterName string
	AS         int // nonzero iff this entry is an AS-wide announce
}

func (e AnnounceEntry) IsAS() bool { return e.AS != 0 }

// PingSpec is one `ping` action entry.
type PingSpec struct {
	From   string
	Target string // dotted-quad loopback IP of the destination
}

// Action is one entry in the topology's ordered action list.
type Action struct {
	AnnouncePrefix []AnnounceEntry // non-nil => this is an announce_prefix action
	Ping           *PingSpec       // non-nil => this is a ping action
}

// LogCategory enumerates the event sink categories from spec.md §6.
type LogCategory string

const (
	CategoryARP   LogCategory = "ARP"
	CategoryBGP   LogCategory = "BGP"
	CategoryDebug LogCategory = "DEBUG"
	CategoryIP    LogCategory = "IP"
	CategoryOSPF  LogCategory = "OSPF"
	CategoryPing  LogCategory = "PING"
	CategorySPT   LogCategory = "SPT"
)

// Topology is the complete, immutable network description handed to the
// controller. Construct it with New, which validates invariants; its fields
// are exported, so a struct literal builds one without that validation.
type Topology struct {
	Routers  []RouterSpec
	Switches []SwitchSpec
	Links    []LinkSpec
	Sessions []SessionSpec

	LogCategories []LogCategory

	Actions []Action

	PrintBGPTables     bool
	PrintRoutingTables bool
	DotGraphFile       string
}

// RouterPrefix returns the /24 owned by the given AS, per spec.md §3.
func RouterPrefix(as int) string {
	return fmt.Sprintf("10.0.%d.0/24", as)
}

// LoopbackIP returns the interface address of a router with the given AS
// and numeric id, per spec.md §3.
func LoopbackIP(as, id int) string {
	return fmt.Sprintf("10.0.%d.%d", as, id)
}
