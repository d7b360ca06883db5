package bgp

import "github.com/routesim/netsim/internal/topology"

// Route is a single candidate BGP route, spec.md §3's BGPRoute. AS_PATH is
// ordered leftmost = most recently prepended, per spec.md.
type Route struct {
	Prefix      string // CIDR, e.g. "10.0.2.0/24"
	ASPath      []int
	NextHop     string // dotted-quad loopback
	NextHopID   int    // numeric id of the router owning NextHop, tie-break (c)
	LocalPref   uint32
	FromSession string // remote router name the route was learned from
	FromRel     topology.LocalRel
	SenderID    int // BGP id of the session's remote endpoint, tie-break (d)
	Originated  bool
}

// Clone returns a deep-enough copy safe to hand to another session's export
// path without aliasing ASPath.
func (r *Route) Clone() *Route {
	cp := *r
	cp.ASPath = append([]int(nil), r.ASPath...)
	return &cp
}

// ContainsAS reports whether as appears anywhere in the AS_PATH, spec.md
// §4.4 step 1's loop check.
func (r *Route) ContainsAS(as int) bool {
	for _, a := range r.ASPath {
		if a == as {
			return true
		}
	}
	return false
}

// Table is a router's per-prefix set of candidate routes indexed by the
// session each was learned from, spec.md §3's "BGP table".
type Table struct {
	candidates map[string]map[string]*Route // prefix -> session -> route
	best       map[string]*Route            // prefix -> current best
}

func NewTable() *Table {
	return &Table{
		candidates: make(map[string]map[string]*Route),
		best:       make(map[string]*Route),
	}
}

// Store records (or clears, if route is nil) the candidate learned from
// session for prefix.
func (t *Table) Store(prefix, session string, route *Route) {
	slots, ok := t.candidates[prefix]
	if !ok {
		slots = make(map[string]*Route)
		t.candidates[prefix] = slots
	}
	if route == nil {
		delete(slots, session)
		if len(slots) == 0 {
			delete(t.candidates, prefix)
		}
		return
	}
	slots[session] = route
}

// Candidates returns every candidate route currently held for prefix.
func (t *Table) Candidates(prefix string) []*Route {
	slots := t.candidates[prefix]
	out := make([]*Route, 0, len(slots))
	for _, r := range slots {
		out = append(out, r)
	}
	return out
}

// Prefixes returns every prefix with at least one candidate route.
func (t *Table) Prefixes() []string {
	out := make([]string, 0, len(t.candidates))
	for p := range t.candidates {
		out = append(out, p)
	}
	return out
}

// Best returns the currently-selected best route for prefix, if any.
func (t *Table) Best(prefix string) (*Route, bool) {
	r, ok := t.best[prefix]
	return r, ok
}

// SetBest records the winner of the decision process for prefix, or clears
// it when best is nil.
func (t *Table) SetBest(prefix string, best *Route) {
	if best == nil {
		delete(t.best, prefix)
		return
	}
	t.best[prefix] = best
}

// AllBest iterates every (prefix, best route) pair, for snapshotting.
func (t *Table) AllBest(yield func(prefix string, route *Route) bool) {
	for p, r := range t.best {
		if !yield(p, r) {
			return
		}
	}
}
