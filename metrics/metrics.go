package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tournaments"

// Metrics holds every collector the service exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpLatency      *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	riotRequests     *prometheus.CounterVec
	registrations    *prometheus.CounterVec
	statusTransition *prometheus.CounterVec
	rostersArchived  prometheus.Counter
}

// New registers all collectors on reg. Use prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route",
		}, []string{"route", "method", "code"}),
		riotRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "riot_api_requests_total",
			Help:      "Outbound Riot API calls by endpoint and HTTP status",
		}, []string{"endpoint", "status"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Join attempts by outcome",
		}, []string{"result"}),
		statusTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Lifecycle transitions persisted by the sweep",
		}, []string{"to"}),
		rostersArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rosters_archived_total",
			Help:      "Finished tournament rosters uploaded to object storage",
		}),
	}
	reg.MustRegister(m.httpLatency, m.httpRequests, m.riotRequests, m.registrations,
		m.statusTransition, m.rostersArchived)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"route": route, "method": method, "code": strconv.Itoa(code)}
	m.httpLatency.With(labels).Observe(elapsed.Seconds())
	m.httpRequests.With(labels).Inc()
}

// RiotRequest records one outbound call. status is 0 on transport errors.
func (m *Metrics) RiotRequest(endpoint string, status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.riotRequests.WithLabelValues(endpoint, label).Inc()
}

func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) StatusTransition(to string) {
	if m == nil {
		return
	}
	m.statusTransition.WithLabelValues(to).Inc()
}

func (m *Metrics) RosterArchived() {
	if m == nil {
		return
	}
	m.rostersArchived.Inc()
}
