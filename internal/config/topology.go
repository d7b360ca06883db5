package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/routesim/netsim/internal/topology"
)

// These file-shaped structs mirror spec.md §6's topology contract
// (routers, switches, links, bgp sessions, actions) rather than reusing
// internal/topology's types directly for decoding, the same separation the
// teacher keeps between its config structs and its domain pipeline types.
type routerFile struct {
	Name string `koanf:"name"`
	ID   int    `koanf:"id"`
	AS   int    `koanf:"as"`
}

type switchFile struct {
	Name string `koanf:"name"`
	ID   int    `koanf:"id"`
}

type linkFile struct {
	A    string `koanf:"a"`
	B    string `koanf:"b"`
	Cost int    `koanf:"cost"`
}

type sessionFile struct {
	A            string `koanf:"a"`
	B            string `koanf:"b"`
	Relationship string `koanf:"relationship"`
}

type announceEntryFile struct {
	Router string `koanf:"router"`
	AS     int    `koanf:"as"`
}

type pingFile struct {
	From   string `koanf:"from"`
	Target string `koanf:"target"`
}

type actionFile struct {
	AnnouncePrefix []announceEntryFile `koanf:"announce_prefix"`
	Ping           *pingFile           `koanf:"ping"`
}

type topologyFile struct {
	Routers            []routerFile  `koanf:"routers"`
	Switches           []switchFile  `koanf:"switches"`
	Links              []linkFile    `koanf:"links"`
	Sessions           []sessionFile `koanf:"sessions"`
	LogCategories      []string      `koanf:"log_categories"`
	Actions            []actionFile  `koanf:"actions"`
	PrintBGPTables     bool          `koanf:"print_bgp_tables"`
	PrintRoutingTables bool          `koanf:"print_routing_tables"`
	DotGraphFile       string        `koanf:"dot_graph_file"`
}

// LoadTopology reads a topology file from path and returns the validated,
// immutable topology.Topology it describes — the reference implementation
// of the "external" parser spec.md §1 declares out of scope for the core.
func LoadTopology(path string) (*topology.Topology, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading topology file %s: %w", path, err)
	}

	var tf topologyFile
	if err := k.Unmarshal("", &tf); err != nil {
		return nil, fmt.Errorf("unmarshaling topology: %w", err)
	}

	return buildTopology(tf)
}

func buildTopology(tf topologyFile) (*topology.Topology, error) {
	routers := make([]topology.RouterSpec, len(tf.Routers))
	for i, r := range tf.Routers {
		routers[i] = topology.RouterSpec{Name: r.Name, ID: r.ID, AS: r.AS}
	}

	switches := make([]topology.SwitchSpec, len(tf.Switches))
	for i, s := range tf.Switches {
		switches[i] = topology.SwitchSpec{Name: s.Name, ID: s.ID}
	}

	links := make([]topology.LinkSpec, len(tf.Links))
	for i, l := range tf.Links {
		links[i] = topology.LinkSpec{A: l.A, B: l.B, Cost: l.Cost}
	}

	sessions := make([]topology.SessionSpec, len(tf.Sessions))
	for i, s := range tf.Sessions {
		rel, err := parseRelationship(s.Relationship)
		if err != nil {
			return nil, fmt.Errorf("session %s-%s: %w", s.A, s.B, err)
		}
		sessions[i] = topology.SessionSpec{A: s.A, B: s.B, Relationship: rel}
	}

	categories := make([]topology.LogCategory, len(tf.LogCategories))
	for i, c := range tf.LogCategories {
		categories[i] = topology.LogCategory(strings.ToUpper(c))
	}

	actions := make([]topology.Action, len(tf.Actions))
	for i, a := range tf.Actions {
		var act topology.Action
		for _, e := range a.AnnouncePrefix {
			act.AnnouncePrefix = append(act.AnnouncePrefix, topology.AnnounceEntry{RouterName: e.Router, AS: e.AS})
		}
		if a.Ping != nil {
			act.Ping = &topology.PingSpec{From: a.Ping.From, Target: a.Ping.Target}
		}
		actions[i] = act
	}

	return topology.New(routers, switches, links, sessions, categories, actions,
		tf.PrintBGPTables, tf.PrintRoutingTables, tf.DotGraphFile)
}

func parseRelationship(s string) (topology.Relationship, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "provider-customer", "provider-of-customer":
		return topology.RelProviderCustomer, nil
	case "customer-provider", "customer-of-provider":
		return topology.RelCustomerProvider, nil
	case "peer":
		return topology.RelPeer, nil
	case "ibgp":
		return topology.RelIBGP, nil
	default:
		return 0, fmt.Errorf("unknown relationship %q", s)
	}
}
