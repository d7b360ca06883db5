package router

import (
	"net/netip"

	"github.com/routesim/netsim/internal/bgp"
	"github.com/routesim/netsim/internal/rib"
)

// RouteSnapshot is one RIB entry as reported for rendering.
type RouteSnapshot struct {
	Prefix  netip.Prefix
	NextHop netip.Addr
	Source  string
	Metric  int
}

// BGPRouteSnapshot is one BGP table best-route entry as reported for
// rendering.
type BGPRouteSnapshot struct {
	Prefix    string
	ASPath    []int
	NextHop   string
	LocalPref uint32
}

// Snapshot is the read-only state the controller collects from a router
// once the run has reached its final quiescence, spec.md §4.6 step 5.
type Snapshot struct {
	Name   string
	AS     int
	Routes []RouteSnapshot
	BGP    []BGPRouteSnapshot
}

func (r *Router) snapshot() Snapshot {
	s := Snapshot{Name: r.spec.Name, AS: r.spec.AS}
	r.rib.All(func(p netip.Prefix, route *rib.Route) bool {
		s.Routes = append(s.Routes, RouteSnapshot{
			Prefix:  p,
			NextHop: route.NextHop,
			Source:  sourceName(route.Source),
			Metric:  route.Metric,
		})
		return true
	})
	r.bgpTable.AllBest(func(prefix string, route *bgp.Route) bool {
		s.BGP = append(s.BGP, BGPRouteSnapshot{
			Prefix:    prefix,
			ASPath:    append([]int(nil), route.ASPath...),
			NextHop:   route.NextHop,
			LocalPref: route.LocalPref,
		})
		return true
	})
	return s
}

func sourceName(s rib.Source) string {
	switch s {
	case rib.SourceConnected:
		return "connected"
	case rib.SourceStatic:
		return "static"
	default:
		return "bgp"
	}
}
