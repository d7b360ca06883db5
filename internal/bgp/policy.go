package bgp

import "github.com/routesim/netsim/internal/topology"

// learnedKind classifies where a best route came from, for the export
// table — spec.md §4.4's "learned from \ export to" table has a row for
// "originated" distinct from the four session relationships.
type learnedKind int

const (
	learnedCustomer learnedKind = iota
	learnedPeer
	learnedProvider
	learnedIBGP
	learnedOriginated
)

func classify(r *Route) learnedKind {
	if r.Originated {
		return learnedOriginated
	}
	switch r.FromRel {
	case topology.LocalRelCustomer:
		return learnedCustomer
	case topology.LocalRelProvider:
		return learnedProvider
	case topology.LocalRelPeer:
		return learnedPeer
	case topology.LocalRelIBGP:
		return learnedIBGP
	default:
		return learnedPeer
	}
}

// ShouldExport implements the Gao-Rexford export table of spec.md §4.4:
// a route learned via learnedKind is exported on a session whose local
// relationship to the exporting router is exportRel, per the fixed table:
//
//	learned \ export to   customer  peer  provider  ibgp
//	customer                 yes     yes     yes      yes
//	peer                     yes     no      no       yes
//	provider                 yes     no      no       yes
//	ibgp                     yes     yes     yes       no
//	originated                yes     yes     yes      yes
func ShouldExport(learned learnedKind, exportRel topology.LocalRel) bool {
	switch learned {
	case learnedCustomer, learnedOriginated:
		return true
	case learnedPeer, learnedProvider:
		return exportRel == topology.LocalRelCustomer || exportRel == topology.LocalRelIBGP
	case learnedIBGP:
		return exportRel != topology.LocalRelIBGP
	default:
		return false
	}
}

// ShouldExportRoute is the Route-based convenience wrapper used by the
// speaker's re-advertisement loop.
func ShouldExportRoute(best *Route, exportRel topology.LocalRel) bool {
	return ShouldExport(classify(best), exportRel)
}
