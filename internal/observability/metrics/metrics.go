package metrics

import "github.com/prometheus/client_golang/prometheus"

// KioskMetrics exposes counters/histograms for the check-in and timer flows.
type KioskMetrics struct {
	checkinsTotal    *prometheus.CounterVec
	togglesTotal     *prometheus.CounterVec
	dashboardLatency prometheus.Histogram
}

func NewKioskMetrics(reg prometheus.Registerer) *KioskMetrics {
	m := &KioskMetrics{
		checkinsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Subsystem: "checkin",
			Name:      "attempts_total",
			Help:      "Total check-in attempts by outcome",
		}, []string{"outcome"}),
		togglesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kiosk",
			Subsystem: "timer",
			Name:      "toggles_total",
			Help:      "Total visit timer toggles by resulting status",
		}, []string{"status"}),
		dashboardLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kiosk",
			Subsystem: "dashboard",
			Name:      "snapshot_latency_seconds",
			Help:      "Latency of building a dashboard snapshot",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.checkinsTotal, m.togglesTotal, m.dashboardLatency)
	return m
}

func (m *KioskMetrics) ObserveCheckin(outcome string) {
	if m == nil {
		return
	}
	m.checkinsTotal.WithLabelValues(outcome).Inc()
}

func (m *KioskMetrics) ObserveToggle(status string) {
	if m == nil {
		return
	}
	m.togglesTotal.WithLabelValues(status).Inc()
}

func (m *KioskMetrics) ObserveDashboardLatency(seconds float64) {
	if m == nil {
		return
	}
	m.dashboardLatency.Observe(seconds)
}
