package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the server's ambient Prometheus instrumentation
// (spec.md §4.16 is silent on observability, but the surrounding
// ambient-stack carries it regardless — see the added DOMAIN STACK
// wiring).
type Metrics struct {
	SessionsActive     prometheus.Gauge
	BinsDelivered      prometheus.Counter
	CacheHitRate       prometheus.Gauge
	ThrottleRejections prometheus.Counter
}

// NewMetrics registers and returns a Metrics bundle against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jpip", Name: "sessions_active", Help: "Number of active JPIP sessions.",
		}),
		BinsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jpip", Name: "bins_delivered_total", Help: "Total data bins delivered to clients.",
		}),
		CacheHitRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jpip", Name: "client_cache_hit_rate", Help: "Most recent client cache hit rate.",
		}),
		ThrottleRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jpip", Name: "bandwidth_throttle_rejections_total", Help: "Requests rejected due to bandwidth throttling.",
		}),
	}
	reg.MustRegister(m.SessionsActive, m.BinsDelivered, m.CacheHitRate, m.ThrottleRejections)
	return m
}
