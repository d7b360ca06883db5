package router

import "github.com/routesim/netsim/internal/transport"

// Kind distinguishes a port wired directly to another router (no Ethernet
// wrapper needed, per transport.EthernetFrame's doc comment) from one wired to a
// switch (frames travel wrapped in transport.EthernetFrame so the switch
// can flood without understanding ARP/IP).
type Kind int

const (
	Direct Kind = iota
	Switched
)

// Port is one of the router's interfaces, spec.md §3.
type Port struct {
	ID       int
	Kind     Kind
	Cost     int
	Endpoint *transport.Endpoint
}
