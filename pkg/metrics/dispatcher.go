package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatcherMetrics records metadata for outbox dispatch cycles.
type DispatcherMetrics struct {
	cycleDuration *prometheus.HistogramVec
	delivered     *prometheus.CounterVec
	failed        *prometheus.CounterVec
	deadLettered  *prometheus.CounterVec
	backlog       prometheus.Gauge
}

// NewDispatcherMetrics registers the dispatcher metrics on the provided registerer.
func NewDispatcherMetrics(reg prometheus.Registerer) *DispatcherMetrics {
	if reg == nil {
		return &DispatcherMetrics{}
	}
	cycleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_dispatch_cycle_seconds",
		Help:    "Duration of outbox dispatch cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"dispatcher"})
	delivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_delivered_total",
		Help: "Outbox events marked published.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox dispatch attempts that failed and will retry.",
	}, []string{"event_type"})
	deadLettered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_dead_lettered_total",
		Help: "Outbox events routed to the dead letter table.",
	}, []string{"event_type", "reason"})
	backlog := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_dispatch_batch_size",
		Help: "Number of events claimed in the most recent dispatch cycle.",
	})
	reg.MustRegister(cycleDuration, delivered, failed, deadLettered, backlog)
	return &DispatcherMetrics{
		cycleDuration: cycleDuration,
		delivered:     delivered,
		failed:        failed,
		deadLettered:  deadLettered,
		backlog:       backlog,
	}
}

// ObserveCycle records the duration for the named dispatcher loop.
func (d *DispatcherMetrics) ObserveCycle(dispatcher string, duration time.Duration) {
	if d == nil || d.cycleDuration == nil {
		return
	}
	d.cycleDuration.WithLabelValues(normalizeLabel(dispatcher)).Observe(duration.Seconds())
}

// IncDelivered increments the delivered counter for the event type.
func (d *DispatcherMetrics) IncDelivered(eventType string) {
	if d == nil || d.delivered == nil {
		return
	}
	d.delivered.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the retryable failure counter for the event type.
func (d *DispatcherMetrics) IncFailed(eventType string) {
	if d == nil || d.failed == nil {
		return
	}
	d.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncDeadLettered increments the DLQ counter for the event type and reason.
func (d *DispatcherMetrics) IncDeadLettered(eventType, reason string) {
	if d == nil || d.deadLettered == nil {
		return
	}
	d.deadLettered.WithLabelValues(normalizeLabel(eventType), normalizeLabel(reason)).Inc()
}

// SetBatchSize records how many events the most recent cycle claimed.
func (d *DispatcherMetrics) SetBatchSize(n int) {
	if d == nil || d.backlog == nil {
		return
	}
	d.backlog.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
