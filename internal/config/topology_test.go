package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTopologyYAML(t *testing.T, data string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "topology.yaml")
	if err := os.WriteFile(p, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadTopology_Valid(t *testing.T) {
	p := writeTopologyYAML(t, `
routers:
  - name: r1
    id: 1
    as: 1
  - name: r2
    id: 2
    as: 2
links:
  - a: r1
    b: r2
    cost: 1
sessions:
  - a: r1
    b: r2
    relationship: customer-of-provider
actions:
  - announce_prefix:
      - router: r2
  - ping:
      from: r1
      target: 10.0.2.2
`)
	topo, err := LoadTopology(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topo.Routers) != 2 {
		t.Fatalf("expected 2 routers, got %d", len(topo.Routers))
	}
	if len(topo.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(topo.Actions))
	}
}

func TestLoadTopology_WithSwitches(t *testing.T) {
	p := writeTopologyYAML(t, `
routers:
  - name: r1
    id: 1
    as: 1
  - name: r2
    id: 2
    as: 1
switches:
  - name: s1
    id: 100
links:
  - a: r1
    b: s1
    cost: 1
  - a: r2
    b: s1
    cost: 1
sessions:
  - a: r1
    b: r2
    relationship: ibgp
`)
	topo, err := LoadTopology(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topo.Switches) != 1 {
		t.Fatalf("expected 1 switch, got %d", len(topo.Switches))
	}
	if len(topo.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(topo.Links))
	}
}

func TestLoadTopology_UnknownRelationship(t *testing.T) {
	p := writeTopologyYAML(t, `
routers:
  - name: r1
    id: 1
    as: 1
  - name: r2
    id: 2
    as: 2
links:
  - a: r1
    b: r2
    cost: 1
sessions:
  - a: r1
    b: r2
    relationship: frenemy
`)
	if _, err := LoadTopology(p); err == nil {
		t.Fatal("expected error for unknown relationship")
	}
}

func TestLoadTopology_ValidationErrorPropagates(t *testing.T) {
	// Dangling link endpoint should fail topology.New's validation.
	p := writeTopologyYAML(t, `
routers:
  - name: r1
    id: 1
    as: 1
links:
  - a: r1
    b: r2
    cost: 1
`)
	if _, err := LoadTopology(p); err == nil {
		t.Fatal("expected validation error for dangling link endpoint")
	}
}

func TestParseRelationship(t *testing.T) {
	cases := map[string]bool{
		"provider-customer":    true,
		"provider-of-customer": true,
		"customer-provider":    true,
		"customer-of-provider": true,
		"peer":                 true,
		"ibgp":                 true,
		"IBGP":                 true,
		" peer ":               true,
		"nonsense":             false,
	}
	for s, wantOK := range cases {
		_, err := parseRelationship(s)
		if (err == nil) != wantOK {
			t.Errorf("parseRelationship(%q): err=%v, want ok=%v", s, err, wantOK)
		}
	}
}

func TestLoadTopology_LogCategoriesUppercased(t *testing.T) {
	p := writeTopologyYAML(t, `
routers:
  - name: r1
    id: 1
    as: 1
  - name: r2
    id: 2
    as: 2
links:
  - a: r1
    b: r2
    cost: 1
sessions:
  - a: r1
    b: r2
    relationship: peer
log_categories:
  - bgp
  - arp
`)
	topo, err := LoadTopology(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topo.LogCategories) != 2 {
		t.Fatalf("expected 2 log categories, got %d", len(topo.LogCategories))
	}
	if string(topo.LogCategories[0]) != "BGP" || string(topo.LogCategories[1]) != "ARP" {
		t.Fatalf("expected uppercased categories [BGP ARP], got %v", topo.LogCategories)
	}
}
