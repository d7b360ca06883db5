package bgp

import "testing"

func TestBest_LocalPrefWins(t *testing.T) {
	low := &Route{ASPath: []int{1}, LocalPref: 100}
	high := &Route{ASPath: []int{1, 2, 3}, LocalPref: 200}
	got := Best([]*Route{low, high})
	if got != high {
		t.Fatalf("expected higher LOCAL_PREF to win despite longer AS_PATH")
	}
}

func TestBest_ShorterASPathBreaksTie(t *testing.T) {
	short := &Route{ASPath: []int{1}, LocalPref: 100}
	long := &Route{ASPath: []int{1, 2}, LocalPref: 100}
	got := Best([]*Route{long, short})
	if got != short {
		t.Fatalf("expected shorter AS_PATH to win when LOCAL_PREF ties")
	}
}

func TestBest_NextHopIDBreaksTie(t *testing.T) {
	a := &Route{ASPath: []int{1}, LocalPref: 100, NextHopID: 5}
	b := &Route{ASPath: []int{1}, LocalPref: 100, NextHopID: 2}
	got := Best([]*Route{a, b})
	if got != b {
		t.Fatalf("expected lower next-hop router id to win")
	}
}

func TestBest_SenderIDBreaksTie(t *testing.T) {
	a := &Route{ASPath: []int{1}, LocalPref: 100, NextHopID: 1, SenderID: 9}
	b := &Route{ASPath: []int{1}, LocalPref: 100, NextHopID: 1, SenderID: 3}
	got := Best([]*Route{a, b})
	if got != b {
		t.Fatalf("expected lower sender BGP id to win")
	}
}

func TestBest_Empty(t *testing.T) {
	if Best(nil) != nil {
		t.Fatal("expected nil best for no candidates")
	}
}
