package render

import (
	"bytes"
	"net/netip"
	"strings"
	"testing"

	"github.com/routesim/netsim/internal/controller"
	"github.com/routesim/netsim/internal/router"
	"github.com/routesim/netsim/internal/topology"
)

func TestRoutingTables_IncludesRouterAndPrefix(t *testing.T) {
	result := &controller.Result{
		Routers: []router.Snapshot{
			{
				Name: "r1",
				AS:   1,
				Routes: []router.RouteSnapshot{
					{Prefix: netip.MustParsePrefix("10.0.1.0/24"), Source: "connected", Metric: 0},
				},
			},
		},
	}
	var buf bytes.Buffer
	RoutingTables(&buf, result)
	out := buf.String()
	if !strings.Contains(out, "r1") || !strings.Contains(out, "10.0.1.0/24") {
		t.Fatalf("expected routing table output to contain router and prefix, got:\n%s", out)
	}
}

func TestBGPTables_IncludesASPath(t *testing.T) {
	result := &controller.Result{
		Routers: []router.Snapshot{
			{
				Name: "r1",
				AS:   1,
				BGP: []router.BGPRouteSnapshot{
					{Prefix: "10.0.2.0/24", ASPath: []int{2, 3}, NextHop: "10.0.1.2", LocalPref: 100},
				},
			},
		},
	}
	var buf bytes.Buffer
	BGPTables(&buf, result)
	out := buf.String()
	if !strings.Contains(out, "[2 3]") {
		t.Fatalf("expected AS path in output, got:\n%s", out)
	}
}

func TestPingOutcomes_IncludesOutcome(t *testing.T) {
	result := &controller.Result{
		Pings: []controller.PingOutcome{
			{From: "r1", Target: "10.0.2.2", Result: router.PingResult{Outcome: router.PingSuccess}},
		},
	}
	var buf bytes.Buffer
	PingOutcomes(&buf, result)
	out := buf.String()
	if !strings.Contains(out, "success") {
		t.Fatalf("expected outcome 'success' in output, got:\n%s", out)
	}
}

func TestWriteDot_IncludesNodesAndEdges(t *testing.T) {
	topo, err := topology.New(
		[]topology.RouterSpec{{Name: "r1", ID: 1, AS: 1}, {Name: "r2", ID: 2, AS: 2}},
		nil,
		[]topology.LinkSpec{{A: "r1", B: "r2", Cost: 1}},
		[]topology.SessionSpec{{A: "r1", B: "r2", Relationship: topology.RelPeer}},
		nil, nil, false, false, "",
	)
	if err != nil {
		t.Fatalf("topology: %v", err)
	}
	var buf bytes.Buffer
	WriteDot(&buf, topo)
	out := buf.String()
	if !strings.Contains(out, `"r1" -- "r2"`) {
		t.Fatalf("expected link edge in dot output, got:\n%s", out)
	}
	if !strings.Contains(out, "peer") {
		t.Fatalf("expected session label in dot output, got:\n%s", out)
	}
}
