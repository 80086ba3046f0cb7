package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wildfire"

// Metrics - счетчики и датчики движка эволюции, хаба трансляции и реестра
type Metrics struct {
	EngineTicks      *prometheus.CounterVec // labels: outcome={updated,empty,error}
	MutationsApplied *prometheus.CounterVec // labels: kind
	TickDuration     prometheus.Histogram

	IncidentUpdates *prometheus.CounterVec // labels: outcome={ok,not_found,invalid,error}

	HubSubscribers     prometheus.Gauge
	HubEventsPublished prometheus.Counter
	HubEventsDropped   prometheus.Counter

	WebhookDeliveries *prometheus.CounterVec // labels: outcome={delivered,failed,skipped}
}

func newMetrics() *Metrics {
	return &Metrics{
		EngineTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_ticks_total",
			Help:      "Evolution engine ticks by outcome.",
		}, []string{"outcome"}),
		MutationsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_mutations_total",
			Help:      "Mutation kinds selected by the evolution engine.",
		}, []string{"kind"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_tick_duration_seconds",
			Help:      "Duration of a single evolution tick.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		IncidentUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incident_updates_total",
			Help:      "Incident update attempts by outcome.",
		}, []string{"outcome"}),
		HubSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_subscribers",
			Help:      "Currently attached live-update subscribers.",
		}),
		HubEventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_published_total",
			Help:      "Incident update events published to the hub.",
		}),
		HubEventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_dropped_total",
			Help:      "Events dropped from slow subscriber queues.",
		}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook deliveries by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics создает метрики и регистрирует их в реестре Prometheus по умолчанию
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.EngineTicks,
		m.MutationsApplied,
		m.TickDuration,
		m.IncidentUpdates,
		m.HubSubscribers,
		m.HubEventsPublished,
		m.HubEventsDropped,
		m.WebhookDeliveries,
	)
	return m
}

// NewMetricsForTesting создает метрики без регистрации, чтобы тесты
// не падали с "already registered".
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
