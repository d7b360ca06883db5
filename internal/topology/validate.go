package topology

import "fmt"

// ValidationError is a fatal topology error (spec.md §7: "Topology errors
// (fatal, before simulation starts)"). It is a plain error value, not a
// zap.Fatal-style process exit, so internal/config and tests can inspect it.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "topology: " + e.Msg }

func errf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// New validates raw declarations and returns an immutable Topology.
func New(routers []RouterSpec, switches []SwitchSpec, links []LinkSpec,
	sessions []SessionSpec, categories []LogCategory, actions []Action,
	printBGP, printRouting bool, dotFile string) (*Topology, error) {

	if len(routers) == 0 && len(switches) == 0 {
		return nil, errf("empty topology: no routers or switches declared")
	}

	names := make(map[string]bool)
	ids := make(map[int]bool)

	for _, r := range routers {
		if r.Name == "" {
			return nil, errf("router with empty name")
		}
		if names[r.Name] {
			return nil, errf("duplicate device name %q", r.Name)
		}
		names[r.Name] = true
		if ids[r.ID] {
			return nil, errf("duplicate device id %d (router %q)", r.ID, r.Name)
		}
		ids[r.ID] = true
		if r.AS <= 0 {
			return nil, errf("router %q has invalid AS number %d", r.Name, r.AS)
		}
	}

	for _, s := range switches {
		if s.Name == "" {
			return nil, errf("switch with empty name")
		}
		if names[s.Name] {
			return nil, errf("duplicate device name %q", s.Name)
		}
		names[s.Name] = true
		if ids[s.ID] {
			return nil, errf("duplicate device id %d (switch %q)", s.ID, s.Name)
		}
		ids[s.ID] = true
	}

	normLinks := make([]LinkSpec, 0, len(links))
	for _, l := range links {
		if !names[l.A] {
			return nil, errf("link references unknown device %q", l.A)
		}
		if !names[l.B] {
			return nil, errf("link references unknown device %q", l.B)
		}
		if l.A == l.B {
			return nil, errf("link endpoint %q connects to itself", l.A)
		}
		cost := l.Cost
		if cost == 0 {
			cost = 1
		}
		normLinks = append(normLinks, LinkSpec{A: l.A, B: l.B, Cost: cost})
	}

	routerNames := make(map[string]RouterSpec, len(routers))
	for _, r := range routers {
		routerNames[r.Name] = r
	}

	for _, s := range sessions {
		ra, ok := routerNames[s.A]
		if !ok {
			return nil, errf("bgp session references unknown router %q", s.A)
		}
		rb, ok := routerNames[s.B]
		if !ok {
			return nil, errf("bgp session references unknown router %q", s.B)
		}
		if s.A == s.B {
			return nil, errf("bgp session endpoint %q paired with itself", s.A)
		}
		if s.Relationship == RelIBGP && ra.AS != rb.AS {
			return nil, errf("ibgp session between %q (AS%d) and %q (AS%d) crosses AS boundary", s.A, ra.AS, s.B, rb.AS)
		}
		if s.Relationship != RelIBGP && ra.AS == rb.AS {
			return nil, errf("eBGP session %q declared between routers in the same AS%d", s.Relationship, ra.AS)
		}
	}

	if err := checkProviderCycles(sessions); err != nil {
		return nil, err
	}

	for _, a := range actions {
		if a.Ping != nil {
			if !names[a.Ping.From] {
				return nil, errf("ping action references unknown router %q", a.Ping.From)
			}
		}
		for _, e := range a.AnnouncePrefix {
			if !e.IsAS() && !names[e.RouterName] {
				return nil, errf("announce_prefix action references unknown router %q", e.RouterName)
			}
		}
	}

	return &Topology{
		Routers:            routers,
		Switches:           switches,
		Links:              normLinks,
		Sessions:           sessions,
		LogCategories:      categories,
		Actions:            actions,
		PrintBGPTables:     printBGP,
		PrintRoutingTables: printRouting,
		DotGraphFile:       dotFile,
	}, nil
}

// checkProviderCycles rejects provider-customer declarations that would
// make a router its own (possibly indirect) provider — spec.md §6/§7.
func checkProviderCycles(sessions []SessionSpec) error {
	// edge A -> B meaning "B is a customer of A" (A provides to B).
	graph := make(map[string][]string)
	for _, s := range sessions {
		switch s.Relationship {
		case RelProviderCustomer:
			graph[s.A] = append(graph[s.A], s.B)
		case RelCustomerProvider:
			graph[s.B] = append(graph[s.B], s.A)
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)

	var visit func(n string) error
	visit = func(n string) error {
		color[n] = gray
		for _, m := range graph[n] {
			switch color[m] {
			case gray:
				return errf("provider-customer cycle: %q is its own (transitive) provider", m)
			case white:
				if err := visit(m); err != nil {
					return err
				}
			}
		}
		color[n] = black
		return nil
	}

	for n := range graph {
		if color[n] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
