package bgp

import "sort"

// Best implements the ordered tie-break of spec.md §4.4 step 4 over a set
// of candidate routes for one prefix:
//
//	a. Highest LOCAL_PREF.
//	b. Shortest AS_PATH.
//	c. Lowest next-hop router id.
//	d. Lowest sender BGP id.
//
// Returns nil if candidates is empty.
func Best(candidates []*Route) *Route {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best
}

func better(a, b *Route) bool {
	if a.LocalPref != b.LocalPref {
		return a.LocalPref > b.LocalPref
	}
	if len(a.ASPath) != len(b.ASPath) {
		return len(a.ASPath) < len(b.ASPath)
	}
	if a.NextHopID != b.NextHopID {
		return a.NextHopID < b.NextHopID
	}
	return a.SenderID < b.SenderID
}

// SortedPrefixes returns prefixes in deterministic order, used by
// renderers and tests that need reproducible output.
func SortedPrefixes(prefixes []string) []string {
	out := append([]string(nil), prefixes...)
	sort.Strings(out)
	return out
}
