// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "goalkeeper"

type Metrics struct {
	registry *prometheus.Registry

	GuestsCreated  prometheus.Counter
	Registrations  *prometheus.CounterVec
	Promotions     prometheus.Counter
	Logins         *prometheus.CounterVec
	GoalsCreated   prometheus.Counter
	GoalsDeleted   prometheus.Counter
	GoalsCleanedUp prometheus.Counter
	HTTPDuration   *prometheus.HistogramVec
}

// New creates the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GuestsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "guests_created_total",
			Help: "Anonymous identities created on demand.",
		}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "registrations_total",
			Help: "Registered identities created, by whether guest goals were migrated.",
		}, []string{"migrated"}),
		Promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "promotions_total",
			Help: "Guests promoted in place to registered identities.",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "logins_total",
			Help: "Password authentication attempts, by result.",
		}, []string{"result"}),
		GoalsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "goals_created_total",
			Help: "Goals created.",
		}),
		GoalsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "goals_deleted_total",
			Help: "Goals deleted explicitly.",
		}),
		GoalsCleanedUp: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "goals_cleaned_up_total",
			Help: "Completed daily goals removed by cleanup.",
		}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.GuestsCreated, m.Registrations, m.Promotions, m.Logins,
		m.GoalsCreated, m.GoalsDeleted, m.GoalsCleanedUp, m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Login results.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)
