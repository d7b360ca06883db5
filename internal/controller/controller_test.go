package controller

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/routesim/netsim/internal/bridge"
	"github.com/routesim/netsim/internal/logging"
	"github.com/routesim/netsim/internal/router"
	"github.com/routesim/netsim/internal/topology"
)

func mustTopo(t *testing.T, routers []topology.RouterSpec, switches []topology.SwitchSpec,
	links []topology.LinkSpec, sessions []topology.SessionSpec, actions []topology.Action) *topology.Topology {
	t.Helper()
	topo, err := topology.New(routers, switches, links, sessions, nil, actions, false, false, "")
	if err != nil {
		t.Fatalf("topology: %v", err)
	}
	return topo
}

func runTopo(t *testing.T, topo *topology.Topology) *Result {
	t.Helper()
	c := New(topo, logging.NewSink(zap.NewNop(), nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return result
}

func findBGP(snap router.Snapshot, prefix string) (router.BGPRouteSnapshot, bool) {
	for _, r := range snap.BGP {
		if r.Prefix == prefix {
			return r, true
		}
	}
	return router.BGPRouteSnapshot{}, false
}

func findRouter(result *Result, name string) router.Snapshot {
	for _, s := range result.Routers {
		if s.Name == name {
			return s
		}
	}
	return router.Snapshot{}
}

// TestScenario_S1_SimpleUpstream: r1(AS1) customer-of r2(AS2); r2 announces.
func TestScenario_S1_SimpleUpstream(t *testing.T) {
	topo := mustTopo(t,
		[]topology.RouterSpec{{Name: "r1", ID: 1, AS: 1}, {Name: "r2", ID: 2, AS: 2}},
		nil,
		[]topology.LinkSpec{{A: "r1", B: "r2", Cost: 1}},
		[]topology.SessionSpec{{A: "r1", B: "r2", Relationship: topology.RelCustomerProvider}},
		[]topology.Action{
			{AnnouncePrefix: []topology.AnnounceEntry{{RouterName: "r2"}}},
			{Ping: &topology.PingSpec{From: "r1", Target: "10.0.2.2"}},
		},
	)
	result := runTopo(t, topo)

	r1 := findRouter(result, "r1")
	if _, ok := findBGP(r1, "10.0.2.0/24"); !ok {
		t.Fatal("expected r1 to learn 10.0.2.0/24")
	}
	if len(result.Pings) != 1 || result.Pings[0].Result.Outcome != router.PingSuccess {
		t.Fatalf("expected ping success, got %+v", result.Pings)
	}
}

// TestScenario_S2_PeerNoTransit: r1-r2 peer, r2-r3 peer; r1 announces; r3
// must not learn it (peer routes are not re-exported to peers).
func TestScenario_S2_PeerNoTransit(t *testing.T) {
	topo := mustTopo(t,
		[]topology.RouterSpec{{Name: "r1", ID: 1, AS: 1}, {Name: "r2", ID: 2, AS: 2}, {Name: "r3", ID: 3, AS: 3}},
		nil,
		[]topology.LinkSpec{{A: "r1", B: "r2", Cost: 1}, {A: "r2", B: "r3", Cost: 1}},
		[]topology.SessionSpec{
			{A: "r1", B: "r2", Relationship: topology.RelPeer},
			{A: "r2", B: "r3", Relationship: topology.RelPeer},
		},
		[]topology.Action{
			{AnnouncePrefix: []topology.AnnounceEntry{{RouterName: "r1"}}},
		},
	)
	result := runTopo(t, topo)

	r3 := findRouter(result, "r3")
	if _, ok := findBGP(r3, "10.0.1.0/24"); ok {
		t.Fatal("expected r3 to NOT learn r1's prefix across two peer hops")
	}
}

// TestScenario_S3_ProviderCustomerValleyFree: r3 is customer of provider r2;
// r1 is customer of provider r3; r6 peers with r3. r2 announces its own
// prefix. r1 must learn it via r3 (provider re-exporting to a customer);
// r6 must NOT learn it, since exporting a provider-learned route to a peer
// would create a valley.
func TestScenario_S3_ProviderCustomerValleyFree(t *testing.T) {
	topo := mustTopo(t,
		[]topology.RouterSpec{
			{Name: "r1", ID: 1, AS: 1}, {Name: "r2", ID: 2, AS: 2},
			{Name: "r3", ID: 3, AS: 3}, {Name: "r6", ID: 6, AS: 6},
		},
		nil,
		[]topology.LinkSpec{
			{A: "r1", B: "r3", Cost: 1}, {A: "r2", B: "r3", Cost: 1}, {A: "r3", B: "r6", Cost: 1},
		},
		[]topology.SessionSpec{
			{A: "r1", B: "r3", Relationship: topology.RelCustomerProvider},
			{A: "r3", B: "r2", Relationship: topology.RelCustomerProvider},
			{A: "r3", B: "r6", Relationship: topology.RelPeer},
		},
		[]topology.Action{
			{AnnouncePrefix: []topology.AnnounceEntry{{RouterName: "r2"}}},
		},
	)
	result := runTopo(t, topo)

	r1 := findRouter(result, "r1")
	route, ok := findBGP(r1, "10.0.2.0/24")
	if !ok {
		t.Fatal("expected r1 to learn 10.0.2.0/24 via r3's provider-to-customer re-export")
	}
	if len(route.ASPath) != 2 || route.ASPath[0] != 3 || route.ASPath[1] != 2 {
		t.Fatalf("expected AS_PATH [3,2] at r1, got %v", route.ASPath)
	}

	r6 := findRouter(result, "r6")
	if _, ok := findBGP(r6, "10.0.2.0/24"); ok {
		t.Fatal("expected r6 to NOT learn 10.0.2.0/24: provider-learned routes must not cross to a peer")
	}
}

// TestScenario_S4_IBGPFullMesh: r1,r2,r3 in AS1 fully iBGP-meshed; r4(AS2)
// is provider of r1 and announces. r2 and r3 must install the route with
// next-hop = r1 loopback and AS_PATH = [2].
func TestScenario_S4_IBGPFullMesh(t *testing.T) {
	topo := mustTopo(t,
		[]topology.RouterSpec{
			{Name: "r1", ID: 1, AS: 1}, {Name: "r2", ID: 2, AS: 1}, {Name: "r3", ID: 3, AS: 1},
			{Name: "r4", ID: 4, AS: 2},
		},
		nil,
		[]topology.LinkSpec{
			{A: "r1", B: "r2", Cost: 1}, {A: "r1", B: "r3", Cost: 1}, {A: "r2", B: "r3", Cost: 1},
			{A: "r4", B: "r1", Cost: 1},
		},
		[]topology.SessionSpec{
			{A: "r1", B: "r2", Relationship: topology.RelIBGP},
			{A: "r1", B: "r3", Relationship: topology.RelIBGP},
			{A: "r2", B: "r3", Relationship: topology.RelIBGP},
			{A: "r4", B: "r1", Relationship: topology.RelProviderCustomer},
		},
		[]topology.Action{
			{AnnouncePrefix: []topology.AnnounceEntry{{RouterName: "r4"}}},
		},
	)
	result := runTopo(t, topo)

	r1Loopback := topology.LoopbackIP(1, 1)
	for _, name := range []string{"r2", "r3"} {
		snap := findRouter(result, name)
		route, ok := findBGP(snap, "10.0.2.0/24")
		if !ok {
			t.Fatalf("expected %s to learn 10.0.2.0/24", name)
		}
		if route.NextHop != r1Loopback {
			t.Fatalf("expected %s next-hop %s, got %s", name, r1Loopback, route.NextHop)
		}
		if len(route.ASPath) != 1 || route.ASPath[0] != 2 {
			t.Fatalf("expected %s AS_PATH [2], got %v", name, route.ASPath)
		}
	}
}

// TestScenario_S5_SwitchedSegment: r1,r2,r4 connected via switch s1, ibgp
// between each pair. STP must converge with all three router-facing ports
// designated, and pings between them must succeed after ARP.
func TestScenario_S5_SwitchedSegment(t *testing.T) {
	topo := mustTopo(t,
		[]topology.RouterSpec{{Name: "r1", ID: 1, AS: 1}, {Name: "r2", ID: 2, AS: 1}, {Name: "r4", ID: 4, AS: 1}},
		[]topology.SwitchSpec{{Name: "s1", ID: 100}},
		[]topology.LinkSpec{
			{A: "r1", B: "s1", Cost: 1}, {A: "r2", B: "s1", Cost: 1}, {A: "r4", B: "s1", Cost: 1},
		},
		[]topology.SessionSpec{
			{A: "r1", B: "r2", Relationship: topology.RelIBGP},
			{A: "r1", B: "r4", Relationship: topology.RelIBGP},
			{A: "r2", B: "r4", Relationship: topology.RelIBGP},
		},
		[]topology.Action{
			{Ping: &topology.PingSpec{From: "r2", Target: topology.LoopbackIP(1, 1)}},
		},
	)
	result := runTopo(t, topo)

	if len(result.Switches) != 1 {
		t.Fatalf("expected one switch snapshot, got %d", len(result.Switches))
	}
	sw := result.Switches[0]
	if !sw.IsRoot {
		t.Fatalf("expected the only switch to be root, got %+v", sw)
	}
	for _, p := range sw.Ports {
		if p.Role != bridge.RoleDesignated {
			t.Fatalf("expected every port designated on a lone star switch, got %+v", sw.Ports)
		}
	}

	if len(result.Pings) != 1 || result.Pings[0].Result.Outcome != router.PingSuccess {
		t.Fatalf("expected ping success across the switched segment, got %+v", result.Pings)
	}
}

// TestScenario_S6_LoopPrevention: r1(AS1) is customer of r2(AS2), which
// peers with r3(AS1, a distinct router reusing AS1). r3 must reject the
// update it receives because its own AS (1) appears in the AS_PATH r2
// re-exports ([2,1]).
func TestScenario_S6_LoopPrevention(t *testing.T) {
	topo := mustTopo(t,
		[]topology.RouterSpec{{Name: "r1", ID: 1, AS: 1}, {Name: "r2", ID: 2, AS: 2}, {Name: "r3", ID: 3, AS: 1}},
		nil,
		[]topology.LinkSpec{{A: "r1", B: "r2", Cost: 1}, {A: "r2", B: "r3", Cost: 1}},
		[]topology.SessionSpec{
			{A: "r1", B: "r2", Relationship: topology.RelCustomerProvider},
			{A: "r2", B: "r3", Relationship: topology.RelPeer},
		},
		[]topology.Action{
			{AnnouncePrefix: []topology.AnnounceEntry{{RouterName: "r1"}}},
		},
	)
	result := runTopo(t, topo)

	r3 := findRouter(result, "r3")
	if _, ok := findBGP(r3, "10.0.1.0/24"); ok {
		t.Fatal("expected r3 to reject the update whose AS_PATH contains its own AS")
	}
}

// TestInvariant_IdempotentAnnounce: announcing the same prefix twice from
// the same origin yields the same best-route selection as announcing it
// once (spec.md §8 invariant 5).
func TestInvariant_IdempotentAnnounce(t *testing.T) {
	build := func(entries []topology.AnnounceEntry) *Result {
		topo := mustTopo(t,
			[]topology.RouterSpec{{Name: "r1", ID: 1, AS: 1}, {Name: "r2", ID: 2, AS: 2}},
			nil,
			[]topology.LinkSpec{{A: "r1", B: "r2", Cost: 1}},
			[]topology.SessionSpec{{A: "r1", B: "r2", Relationship: topology.RelCustomerProvider}},
			[]topology.Action{{AnnouncePrefix: entries}},
		)
		return runTopo(t, topo)
	}

	once := build([]topology.AnnounceEntry{{RouterName: "r2"}})
	twice := build([]topology.AnnounceEntry{{RouterName: "r2"}, {RouterName: "r2"}})

	onceRoute, ok1 := findBGP(findRouter(once, "r1"), "10.0.2.0/24")
	twiceRoute, ok2 := findBGP(findRouter(twice, "r1"), "10.0.2.0/24")
	if !ok1 || !ok2 {
		t.Fatal("expected both runs to install 10.0.2.0/24")
	}
	if !equalBGPRoute(onceRoute, twiceRoute) {
		t.Fatalf("expected idempotent result, got %+v vs %+v", onceRoute, twiceRoute)
	}
}

func equalBGPRoute(a, b router.BGPRouteSnapshot) bool {
	if a.Prefix != b.Prefix || a.NextHop != b.NextHop || a.LocalPref != b.LocalPref || len(a.ASPath) != len(b.ASPath) {
		return false
	}
	for i := range a.ASPath {
		if a.ASPath[i] != b.ASPath[i] {
			return false
		}
	}
	return true
}
