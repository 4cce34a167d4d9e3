package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	eventTotal    *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
	eventInFlight prometheus.Gauge
	eventLag      *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rge",
			Subsystem: "worker",
			Name:      "search_event_total",
			Help:      "Total persisted search events by status.",
		},
		[]string{"service", "status"},
	)
	eventDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rge",
			Subsystem: "worker",
			Name:      "search_event_duration_seconds",
			Help:      "Search event handling duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	eventInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rge",
			Subsystem: "worker",
			Name:      "search_event_in_flight",
			Help:      "Number of in-flight search event handlers.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rge",
			Subsystem: "worker",
			Name:      "event_lag_seconds",
			Help:      "Delay between the search completing and the event being handled.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(eventTotal, eventDuration, eventInFlight, eventLag)

	return &WorkerMetrics{
		registry:      registry,
		eventTotal:    eventTotal,
		eventDuration: eventDuration,
		eventInFlight: eventInFlight,
		eventLag:      eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveHandling(service, status string, duration time.Duration) {
	m.eventTotal.WithLabelValues(service, status).Inc()
	m.eventDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveLag(service string, lag time.Duration) {
	if lag < 0 {
		lag = 0
	}
	m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) TrackInFlight() func() {
	m.eventInFlight.Inc()
	return func() { m.eventInFlight.Dec() }
}
