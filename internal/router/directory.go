package router

import "github.com/routesim/netsim/internal/topology"

// Directory is the read-only, whole-topology lookup table every router
// actor needs to resolve a peer's loopback IP or name back to its
// RouterSpec. It never changes after construction, so sharing a pointer to
// it across actors is the same kind of read-only configuration sharing as
// handing each actor its own topology.Topology — not the mutable shared
// state spec.md §5 rules out.
type Directory struct {
	byName     map[string]topology.RouterSpec
	byLoopback map[string]topology.RouterSpec
}

func NewDirectory(t *topology.Topology) *Directory {
	d := &Directory{
		byName:     make(map[string]topology.RouterSpec, len(t.Routers)),
		byLoopback: make(map[string]topology.RouterSpec, len(t.Routers)),
	}
	for _, rs := range t.Routers {
		d.byName[rs.Name] = rs
		d.byLoopback[topology.LoopbackIP(rs.AS, rs.ID)] = rs
	}
	return d
}

func (d *Directory) ByName(name string) (topology.RouterSpec, bool) {
	rs, ok := d.byName[name]
	return rs, ok
}

func (d *Directory) ByLoopback(ip string) (topology.RouterSpec, bool) {
	rs, ok := d.byLoopback[ip]
	return rs, ok
}

// IDByLoopback returns the numeric router id owning ip, or 0 if unknown.
func (d *Directory) IDByLoopback(ip string) int {
	if rs, ok := d.byLoopback[ip]; ok {
		return rs.ID
	}
	return 0
}
