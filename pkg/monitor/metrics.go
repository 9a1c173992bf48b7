package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "kevsays"

// Collector exposes the status snapshots as Prometheus metrics. It is a
// Publisher, so it is fed by the same status pulse as the Reporter.
type Collector struct {
	retrievedRate *prometheus.GaugeVec
	idlePassRate  *prometheus.GaugeVec
	activeRatio   *prometheus.GaugeVec
	temperature   prometheus.Gauge
	schedWaiting  prometheus.Gauge
	options       prometheus.Gauge
	debug         prometheus.Gauge
	reports       prometheus.Counter
}

// NewCollector creates a Collector.
func NewCollector() *Collector {
	return &Collector{
		retrievedRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "core",
			Name:      "messages_per_second",
			Help:      "Messages retrieved per second in the last sample window",
		}, []string{"core"}),
		idlePassRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "core",
			Name:      "idle_passes_per_second",
			Help:      "Idle function calls per second in the last sample window",
		}, []string{"core"}),
		activeRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "core",
			Name:      "active_ratio",
			Help:      "Share of the last sample window spent handling messages",
		}, []string{"core"}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "temperature_celsius",
			Help:      "On-board temperature",
		}),
		schedWaiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "sched",
			Name:      "waiting",
			Help:      "Scheduled messages waiting on both cores",
		}),
		options: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "option_switches",
			Help:      "Option switch value",
		}),
		debug: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "debug",
			Help:      "1 when debug is on",
		}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "status_reports_total",
			Help:      "Status snapshots observed",
		}),
	}
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.retrievedRate, c.idlePassRate, c.activeRatio,
		c.temperature, c.schedWaiting, c.options, c.debug, c.reports,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.collectors() {
		m.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.collectors() {
		m.Collect(ch)
	}
}

// Publish implements Publisher.
func (c *Collector) Publish(st *Status) error {
	for _, ps := range st.Cores {
		core := ps.Core.String()
		c.retrievedRate.WithLabelValues(core).Set(ps.RetrievedPerSec())
		c.idlePassRate.WithLabelValues(core).Set(ps.IdlePassesPerSec())
		if ps.WindowMs > 0 {
			c.activeRatio.WithLabelValues(core).Set(float64(ps.ActiveUs) / (float64(ps.WindowMs) * 1000))
		}
		if ps.TempC != 0 {
			c.temperature.Set(float64(ps.TempC))
		}
	}
	c.schedWaiting.Set(float64(st.SchedWaiting))
	c.options.Set(float64(st.Options))
	if st.Debug {
		c.debug.Set(1)
	} else {
		c.debug.Set(0)
	}
	c.reports.Inc()
	return nil
}
