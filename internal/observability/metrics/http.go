package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchTotal          *prometheus.CounterVec
	searchResults        *prometheus.HistogramVec
	searchConfidence     *prometheus.HistogramVec
	searchDuration       *prometheus.HistogramVec
	searchEmptyTotal     *prometheus.CounterVec
	japaneseQueriesTotal *prometheus.CounterVec
	cacheLookupsTotal    *prometheus.CounterVec
	catalogDeniedTotal   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rge",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rge",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rge",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total completed guide searches by leading result source.",
		},
		[]string{"service", "source"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rge",
			Subsystem: "search",
			Name:      "results",
			Help:      "Distribution of result counts per search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	searchConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rge",
			Subsystem: "search",
			Name:      "top_confidence",
			Help:      "Distribution of the top result's confidence score.",
			Buckets:   []float64{0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
		[]string{"service"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rge",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	searchEmptyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rge",
			Subsystem: "search",
			Name:      "empty_total",
			Help:      "Total searches that returned zero guides.",
		},
		[]string{"service"},
	)
	japaneseQueriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rge",
			Subsystem: "search",
			Name:      "japanese_queries_total",
			Help:      "Total searches with Japanese characters in the query.",
		},
		[]string{"service"},
	)
	cacheLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rge",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by outcome.",
		},
		[]string{"service", "outcome"},
	)
	catalogDeniedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rge",
			Subsystem: "catalog",
			Name:      "rate_limited_total",
			Help:      "Total external catalog calls denied by the request budget.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchTotal,
		searchResults,
		searchConfidence,
		searchDuration,
		searchEmptyTotal,
		japaneseQueriesTotal,
		cacheLookupsTotal,
		catalogDeniedTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		searchTotal:          searchTotal,
		searchResults:        searchResults,
		searchConfidence:     searchConfidence,
		searchDuration:       searchDuration,
		searchEmptyTotal:     searchEmptyTotal,
		japaneseQueriesTotal: japaneseQueriesTotal,
		cacheLookupsTotal:    cacheLookupsTotal,
		catalogDeniedTotal:   catalogDeniedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/guides/device/"):
		return "/v1/guides/device/{device}"
	case strings.HasPrefix(path, "/v1/guides/") && !strings.HasPrefix(path, "/v1/guides/trending") && !strings.HasPrefix(path, "/v1/guides/stats") && !strings.HasPrefix(path, "/v1/guides/search"):
		return "/v1/guides/{guide_id}"
	default:
		return path
	}
}

// RecordSearch captures one completed search. topSource is the source of
// the best-ranked result; empty searches record under "none".
func (m *HTTPServerMetrics) RecordSearch(service, topSource string, resultCount int, topConfidence float64, japanese bool, duration time.Duration) {
	if topSource == "" {
		topSource = "none"
	}
	m.searchTotal.WithLabelValues(service, topSource).Inc()
	m.searchResults.WithLabelValues(service).Observe(float64(resultCount))
	m.searchDuration.WithLabelValues(service).Observe(duration.Seconds())
	if resultCount == 0 {
		m.searchEmptyTotal.WithLabelValues(service).Inc()
	} else {
		m.searchConfidence.WithLabelValues(service).Observe(topConfidence)
	}
	if japanese {
		m.japaneseQueriesTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordCacheLookup(service string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordCatalogDenied(service string) {
	m.catalogDeniedTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
