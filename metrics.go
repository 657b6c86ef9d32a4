package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modtap/log"
	"modtap/tap"
)

func engineStats() tap.Stats {
	if e := currentEngine.Load(); e != nil {
		return e.Stats()
	}
	return tap.Stats{}
}

// serveMetrics exposes the engine counters for Prometheus scraping.
// A config reload installs a fresh engine, which scrapers see as a
// counter reset.
func serveMetrics(addr string) {
	reg := prometheus.NewRegistry()

	stat := func(read func(tap.Stats) uint64) func() float64 {
		return func() float64 { return float64(read(engineStats())) }
	}

	reg.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "modtap_taps_total",
			Help:        "Lone modifier taps that emitted an action.",
			ConstLabels: prometheus.Labels{"side": "primary"},
		}, stat(func(s tap.Stats) uint64 { return s.Taps[tap.Primary] })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "modtap_taps_total",
			Help:        "Lone modifier taps that emitted an action.",
			ConstLabels: prometheus.Labels{"side": "secondary"},
		}, stat(func(s tap.Stats) uint64 { return s.Taps[tap.Secondary] })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "modtap_suppressed_total",
			Help:        "Watched-key releases that did not fire.",
			ConstLabels: prometheus.Labels{"reason": "slow"},
		}, stat(func(s tap.Stats) uint64 { return s.Slow })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "modtap_suppressed_total",
			Help:        "Watched-key releases that did not fire.",
			ConstLabels: prometheus.Labels{"reason": "interference"},
		}, stat(func(s tap.Stats) uint64 { return s.Interfered })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "modtap_suppressed_total",
			Help:        "Watched-key releases that did not fire.",
			ConstLabels: prometheus.Labels{"reason": "stale"},
		}, stat(func(s tap.Stats) uint64 { return s.Stale })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "modtap_other_key_presses_total",
			Help: "Non-watched key presses observed while monitoring.",
		}, stat(func(s tap.Stats) uint64 { return s.OtherKeys })),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "modtap_suspends_total",
			Help: "Host event delivery suspensions recovered from.",
		}, stat(func(s tap.Stats) uint64 { return s.Suspends })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "modtap_monitoring_enabled",
			Help: "Whether the tap engine is currently monitoring.",
		}, func() float64 {
			if e := currentEngine.Load(); e != nil && e.Running() {
				return 1
			}
			return 0
		}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.Infof("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("metrics server: %v", err)
	}
}
