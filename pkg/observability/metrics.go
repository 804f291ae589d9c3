package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Challenge lifecycle metrics
	ChallengesTotal *prometheus.CounterVec

	// Backend call metrics
	BackendCallsTotal   *prometheus.CounterVec
	BackendCallDuration *prometheus.HistogramVec

	// Credential metrics
	CredentialRefreshTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		ChallengesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_challenges_total",
				Help: "Total number of authentication challenge transitions",
			},
			[]string{"kind", "outcome"},
		),
		BackendCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_backend_calls_total",
				Help: "Total number of identity backend calls",
			},
			[]string{"operation", "status"},
		),
		BackendCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gatehouse_backend_call_duration_seconds",
				Help:    "Identity backend call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CredentialRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatehouse_credential_refresh_total",
				Help: "Total number of service credential refresh attempts",
			},
			[]string{"outcome"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.ChallengesTotal,
		m.BackendCallsTotal,
		m.BackendCallDuration,
		m.CredentialRefreshTotal,
	)

	return m
}

// RecordChallenge records a challenge lifecycle transition
func (m *Metrics) RecordChallenge(kind, outcome string) {
	m.ChallengesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordBackendCall records one identity backend round trip
func (m *Metrics) RecordBackendCall(operation string, status int, duration time.Duration) {
	m.BackendCallsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.BackendCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCredentialRefresh records a credential refresh attempt
func (m *Metrics) RecordCredentialRefresh(outcome string) {
	m.CredentialRefreshTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the Prometheus scrape handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
