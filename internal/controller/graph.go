package controller

import (
	"net/netip"

	"github.com/routesim/netsim/internal/router"
	"github.com/routesim/netsim/internal/topology"
)

// edge is one physical link with the per-device port ids already assigned,
// in the order topo.Links declares them — the same numbering New uses
// when it wires each transport.Link and calls AddPort.
type edge struct {
	a, b         string
	aPort, bPort int
	cost         int
}

func buildEdges(topo *topology.Topology) []edge {
	next := make(map[string]int)
	edges := make([]edge, 0, len(topo.Links))
	for _, l := range topo.Links {
		aPort := next[l.A]
		next[l.A]++
		bPort := next[l.B]
		next[l.B]++
		cost := l.Cost
		if cost == 0 {
			cost = 1
		}
		edges = append(edges, edge{a: l.A, aPort: aPort, b: l.B, bPort: bPort, cost: cost})
	}
	return edges
}

type neighbor struct {
	port int
	name string
}

func neighborsOf(edges []edge, name string) []neighbor {
	var out []neighbor
	for _, e := range edges {
		if e.a == name {
			out = append(out, neighbor{port: e.aPort, name: e.b})
		}
		if e.b == name {
			out = append(out, neighbor{port: e.bPort, name: e.a})
		}
	}
	return out
}

// localPeersFor computes, for every router, the set of other routers
// directly reachable over one of its ports without crossing a third
// router — spec.md §4.3's "broadcast domain is the set of routers and
// switches transitively reachable via non-blocked switch ports without
// crossing another router." STP hasn't run yet at this point (these are
// computed once before any actor starts), so this traverses the full
// switch fabric rather than only its post-convergence non-blocked ports;
// a blocked port still belongs to the same broadcast domain, it just isn't
// used for forwarding.
func localPeersFor(topo *topology.Topology, edges []edge, dir *router.Directory) map[string][]router.LocalPeer {
	isRouter := make(map[string]bool, len(topo.Routers))
	for _, r := range topo.Routers {
		isRouter[r.Name] = true
	}

	result := make(map[string][]router.LocalPeer)
	for _, r := range topo.Routers {
		for _, n := range neighborsOf(edges, r.Name) {
			if isRouter[n.name] {
				result[r.Name] = append(result[r.Name], localPeer(dir, n.name, n.port))
				continue
			}
			for _, peerName := range routersInDomain(edges, isRouter, n.name, r.Name) {
				result[r.Name] = append(result[r.Name], localPeer(dir, peerName, n.port))
			}
		}
	}
	return result
}

func localPeer(dir *router.Directory, name string, port int) router.LocalPeer {
	spec, _ := dir.ByName(name)
	return router.LocalPeer{
		Loopback: netip.MustParseAddr(topology.LoopbackIP(spec.AS, spec.ID)),
		Port:     port,
	}
}

// routersInDomain BFS-walks the switch fabric reachable from startSwitch,
// returning every distinct router (other than exclude) directly attached
// to any switch visited.
func routersInDomain(edges []edge, isRouter map[string]bool, startSwitch, exclude string) []string {
	visited := map[string]bool{startSwitch: true}
	queue := []string{startSwitch}
	seen := map[string]bool{}
	var routers []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range neighborsOf(edges, cur) {
			if isRouter[n.name] {
				if n.name != exclude && !seen[n.name] {
					seen[n.name] = true
					routers = append(routers, n.name)
				}
				continue
			}
			if !visited[n.name] {
				visited[n.name] = true
				queue = append(queue, n.name)
			}
		}
	}
	return routers
}
