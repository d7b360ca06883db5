// Package render prints routing/BGP tables and writes a Graphviz dot file
// for a run's final topology, the spec.md §6 "external" pretty-printers
// this repo ships a reference implementation of. No table-formatting
// library exists anywhere in the pack, so these use stdlib text/tabwriter,
// the same way the teacher reaches for stdlib net/http rather than a web
// framework for its own small surfaces.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/routesim/netsim/internal/controller"
)

// RoutingTables writes one text/tabwriter table per router's RIB.
func RoutingTables(w io.Writer, result *controller.Result) {
	for _, r := range result.Routers {
		fmt.Fprintf(w, "routing table: %s (AS%d)\n", r.Name, r.AS)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PREFIX\tNEXT-HOP\tSOURCE\tMETRIC")
		for _, route := range r.Routes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", route.Prefix, route.NextHop, route.Source, route.Metric)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}
}

// BGPTables writes one text/tabwriter table per router's best-path BGP table.
func BGPTables(w io.Writer, result *controller.Result) {
	for _, r := range result.Routers {
		fmt.Fprintf(w, "bgp table: %s (AS%d)\n", r.Name, r.AS)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PREFIX\tAS-PATH\tNEXT-HOP\tLOCAL-PREF")
		for _, route := range r.BGP {
			fmt.Fprintf(tw, "%s\t%v\t%s\t%d\n", route.Prefix, route.ASPath, route.NextHop, route.LocalPref)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}
}

// PingOutcomes writes one line per recorded ping action's result.
func PingOutcomes(w io.Writer, result *controller.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tTARGET\tOUTCOME")
	for _, p := range result.Pings {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.From, p.Target, p.Result.Outcome)
	}
	tw.Flush()
}
