package controller

import (
	"github.com/routesim/netsim/internal/bridge"
	"github.com/routesim/netsim/internal/router"
)

// PingOutcome is one completed ping action, reported alongside the final
// snapshots.
type PingOutcome struct {
	From   string
	Target string
	Result router.PingResult
}

// Result is everything a run produces: final per-router and per-switch
// state plus every ping outcome, in action order — spec.md §4.6 step 5,
// "snapshot requested tables."
type Result struct {
	Routers []router.Snapshot
	Switches []bridge.Snapshot
	Pings   []PingOutcome
}
