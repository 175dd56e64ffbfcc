package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "msgboard"

// Metrics owns a private Prometheus registry for one board process.
type Metrics struct {
	Registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	workers  prometheus.Gauge
}

// Lengther is satisfied by the message store.
type Lengther interface {
	Len() int
}

func New(messages Lengther) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from accept to response, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Number of running worker instances.",
		}),
	}

	m.Registry.MustRegister(
		m.requests,
		m.duration,
		m.workers,
		collectors.NewGoCollector(),
	)
	if messages != nil {
		m.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "messages",
			Help:      "Messages currently held in the store.",
		}, func() float64 {
			return float64(messages.Len())
		}))
	}
	return m
}

// Observe records one finished request. A nil receiver is a no-op so
// callers do not need to check whether metrics are enabled.
func (m *Metrics) Observe(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) SetWorkers(n int) {
	if m == nil {
		return
	}
	m.workers.Set(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RequestCount returns the counter for route and code; used in tests.
func (m *Metrics) RequestCount(route string, code int) prometheus.Counter {
	return m.requests.WithLabelValues(route, strconv.Itoa(code))
}
