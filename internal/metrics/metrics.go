// Package metrics declares the Prometheus vectors a run publishes:
// session establishment, route installation, ping outcomes, STP
// convergence, and quiescence-round timing.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsEstablishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsim_bgp_sessions_established_total",
			Help: "BGP sessions that reached Established.",
		},
		[]string{"local", "peer"},
	)

	RoutesInstalledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsim_bgp_routes_installed_total",
			Help: "BGP routes selected as best and installed into a RIB.",
		},
		[]string{"router", "prefix"},
	)

	RIBEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netsim_rib_entries",
			Help: "Current RIB entry count per router.",
		},
		[]string{"router"},
	)

	PingOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsim_ping_outcomes_total",
			Help: "Ping action outcomes by result.",
		},
		[]string{"from", "target", "outcome"},
	)

	STPConvergenceRounds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netsim_stp_convergence_rounds",
			Help:    "BPDU emission rounds a switch took before going silent.",
			Buckets: []float64{1, 2, 3, 4, 5, 8, 13, 21},
		},
		[]string{"switch"},
	)

	QuiescenceRoundDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netsim_quiescence_round_duration_seconds",
			Help:    "Wall-clock time spent waiting for a quiescence round.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"action"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SessionsEstablishedTotal,
			RoutesInstalledTotal,
			RIBEntries,
			PingOutcomesTotal,
			STPConvergenceRounds,
			QuiescenceRoundDuration,
		)
	})
}
