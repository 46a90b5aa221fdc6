// Package metrics exposes the scheduling loop as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"breakreminder/internal/domain/constant"
	"breakreminder/internal/domain/entity"
)

const namespace = "breakreminder"

// Collector records loop events. It satisfies service.MetricsRecorder.
type Collector struct {
	state         prometheus.Gauge
	nextAlert     prometheus.Gauge
	eventsPerHour prometheus.Gauge
	leadTime      prometheus.Gauge
	alerts        *prometheus.CounterVec
	failures      *prometheus.CounterVec
	rescheduled   prometheus.Counter
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loop_state",
			Help:      "Scheduling loop state (0 idle, 1 computing, 2 waiting, 3 firing, 4 rescheduling, 5 stopped).",
		}),
		nextAlert: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "next_alert_timestamp_seconds",
			Help:      "Unix time of the next scheduled alert.",
		}),
		eventsPerHour: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_per_hour",
			Help:      "Configured alerts per hour.",
		}),
		leadTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lead_time_minutes",
			Help:      "Configured lead time before each boundary.",
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_fired_total",
			Help:      "Alerts delivered, by source.",
		}, []string{"source"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_failures_total",
			Help:      "Alerts whose delivery failed, by source.",
		}, []string{"source"}),
		rescheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reschedules_total",
			Help:      "Waits cancelled by a configuration change.",
		}),
	}
	reg.MustRegister(c.state, c.nextAlert, c.eventsPerHour, c.leadTime, c.alerts, c.failures, c.rescheduled)
	return c
}

func (c *Collector) SetState(state constant.LoopState) {
	c.state.Set(float64(state.Int()))
}

func (c *Collector) SetNextAlert(next time.Time) {
	c.nextAlert.Set(float64(next.Unix()))
}

func (c *Collector) SetConfiguration(cfg entity.Configuration) {
	c.eventsPerHour.Set(float64(cfg.EventsPerHour))
	c.leadTime.Set(float64(cfg.LeadTimeMinutes))
}

func (c *Collector) AlertFired(source constant.AlertSource) {
	c.alerts.WithLabelValues(string(source)).Inc()
}

func (c *Collector) AlertFailed(source constant.AlertSource) {
	c.failures.WithLabelValues(string(source)).Inc()
}

func (c *Collector) Rescheduled() {
	c.rescheduled.Inc()
}
