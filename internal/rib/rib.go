// Package rib implements the per-router Routing Information Base:
// single-best-route-per-prefix with longest-prefix-match lookup, source
// precedence connected > static > bgp (spec.md §4.5). Longest-prefix match
// is delegated to github.com/gaissmai/bart's compressed trie rather than a
// hand-rolled one — see DESIGN.md.
package rib

import (
	"net/netip"

	"github.com/gaissmai/bart"
)

// Source is the administrative origin of a Route, spec.md §3.
type Source int

const (
	SourceConnected Source = iota
	SourceStatic
	SourceBGP
)

// precedence returns the source's priority; higher wins. Connected routes
// always beat static, which always beats bgp, per spec.md §4.5.
func (s Source) precedence() int {
	switch s {
	case SourceConnected:
		return 2
	case SourceStatic:
		return 1
	default:
		return 0
	}
}

// Route is one RIB entry, spec.md §3.
type Route struct {
	Prefix  netip.Prefix
	NextHop netip.Addr
	Port    int // egress port id; loopback routes use PortLoopback
	Source  Source
	Metric  int
}

// PortLoopback marks a connected route that terminates locally rather than
// egressing a physical port (spec.md invariant 1: "pointing at the
// loopback with zero cost").
const PortLoopback = -1

// RIB is one router's Routing Information Base.
type RIB struct {
	table *bart.Table[*Route]
}

func New() *RIB {
	return &RIB{table: new(bart.Table[*Route])}
}

// Install replaces (or inserts) the route for prefix if it would win over
// whatever is currently installed, per source precedence then metric.
// Reports whether the installed best route for the prefix changed.
func (r *RIB) Install(route *Route) bool {
	existing, ok := r.table.Get(route.Prefix)
	if ok && !wins(route, existing) {
		return false
	}
	r.table.Insert(route.Prefix, route)
	return true
}

// wins reports whether candidate should replace current.
func wins(candidate, current *Route) bool {
	if candidate.Source.precedence() != current.Source.precedence() {
		return candidate.Source.precedence() > current.Source.precedence()
	}
	return candidate.Metric < current.Metric
}

// Withdraw removes the route for prefix if it exists and matches source.
// Reports whether a route was actually removed.
func (r *RIB) Withdraw(prefix netip.Prefix, source Source) bool {
	existing, ok := r.table.Get(prefix)
	if !ok || existing.Source != source {
		return false
	}
	r.table.Delete(prefix)
	return true
}

// Get returns the exact-match route installed for prefix, if any.
func (r *RIB) Get(prefix netip.Prefix) (*Route, bool) {
	return r.table.Get(prefix)
}

// Lookup performs longest-prefix-match forwarding lookup for dst, returning
// the next hop and egress port (spec.md §4.5).
func (r *RIB) Lookup(dst netip.Addr) (*Route, bool) {
	return r.table.Lookup(dst)
}

// All iterates every installed route.
func (r *RIB) All(yield func(netip.Prefix, *Route) bool) {
	r.table.All()(yield)
}

// Size returns the number of installed routes.
func (r *RIB) Size() int {
	return r.table.Size()
}
