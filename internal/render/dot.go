package render

import (
	"fmt"
	"io"

	"github.com/routesim/netsim/internal/topology"
)

// WriteDot writes a Graphviz description of topo's physical links and BGP
// sessions, the two drawn as visually distinct edge styles: solid for
// links, dashed and colored by relationship for sessions.
func WriteDot(w io.Writer, topo *topology.Topology) {
	fmt.Fprintln(w, "graph netsim {")
	for _, r := range topo.Routers {
		fmt.Fprintf(w, "  %q [shape=box, label=%q];\n", r.Name, fmt.Sprintf("%s\\nAS%d", r.Name, r.AS))
	}
	for _, s := range topo.Switches {
		fmt.Fprintf(w, "  %q [shape=ellipse];\n", s.Name)
	}
	for _, l := range topo.Links {
		fmt.Fprintf(w, "  %q -- %q;\n", l.A, l.B)
	}
	for _, s := range topo.Sessions {
		fmt.Fprintf(w, "  %q -- %q [style=dashed, color=%q, label=%q];\n",
			s.A, s.B, sessionColor(s.Relationship), s.Relationship.String())
	}
	fmt.Fprintln(w, "}")
}

func sessionColor(rel topology.Relationship) string {
	switch rel {
	case topology.RelProviderCustomer, topology.RelCustomerProvider:
		return "blue"
	case topology.RelPeer:
		return "green"
	case topology.RelIBGP:
		return "gray"
	default:
		return "black"
	}
}
