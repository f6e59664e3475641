package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Rounds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_rounds_total",
		Help: "Completed scan rounds",
	})

	UniverseSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arb_universe_size",
		Help: "Instruments listed on two or more venues",
	})

	FetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_fetch_errors_total",
		Help: "Per-venue top-of-book fetch failures (timeouts included)",
	}, []string{"venue"})

	QuotesCollected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_quotes_collected_total",
		Help: "Usable quotes collected per venue",
	}, []string{"venue"})

	FetchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_fetch_latency_seconds",
		Help:    "Time to obtain one venue's top of book",
		Buckets: prometheus.DefBuckets,
	})

	Opportunities = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_opportunities_total",
		Help: "Opportunities reported to sinks",
	})

	SinkErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_sink_errors_total",
		Help: "Sink report failures (isolated, round continues)",
	})
)

func init() {
	prometheus.MustRegister(
		Rounds,
		UniverseSize,
		FetchErrors,
		QuotesCollected,
		FetchLatency,
		Opportunities,
		SinkErrors,
	)
}
