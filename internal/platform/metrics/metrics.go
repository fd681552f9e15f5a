package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics holds the Prometheus collectors for the HTTP surface and the
// volunteer lifecycle. All methods are safe on a nil receiver.
type Metrics struct {
	RequestDuration      *prometheus.HistogramVec
	AccountsCreated      prometheus.Counter
	OnboardingsCompleted *prometheus.CounterVec
	EventsCreated        prometheus.Counter
	ApplicationsCreated  prometheus.Counter
	ApplicationsDecided  *prometheus.CounterVec
	ApplicationsCanceled prometheus.Counter
	ApplyConflicts       prometheus.Counter
	AuditRelayed         *prometheus.CounterVec
}

// New creates and registers all collectors on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voluntr_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status class",
			Buckets: latencyBuckets,
		}, []string{"method", "route", "status"}),
		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "voluntr_accounts_created_total",
			Help: "Accounts created on first login",
		}),
		OnboardingsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voluntr_onboardings_completed_total",
			Help: "Onboarding submissions by role",
		}, []string{"role"}),
		EventsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "voluntr_events_created_total",
			Help: "Events published by NGO admins",
		}),
		ApplicationsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "voluntr_applications_created_total",
			Help: "Applications submitted by volunteers",
		}),
		ApplicationsDecided: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voluntr_applications_decided_total",
			Help: "Application decisions by resulting status",
		}, []string{"status"}),
		ApplicationsCanceled: f.NewCounter(prometheus.CounterOpts{
			Name: "voluntr_applications_cancelled_total",
			Help: "Pending applications withdrawn by volunteers",
		}),
		ApplyConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "voluntr_apply_conflicts_total",
			Help: "Apply attempts rejected as duplicates",
		}),
		AuditRelayed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "voluntr_audit_relayed_total",
			Help: "Audit outbox entries relayed to the broker by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveRequest(method, route, status string, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncAccountCreated() {
	if m == nil {
		return
	}
	m.AccountsCreated.Inc()
}

func (m *Metrics) IncOnboarding(role string) {
	if m == nil {
		return
	}
	m.OnboardingsCompleted.WithLabelValues(role).Inc()
}

func (m *Metrics) IncEventCreated() {
	if m == nil {
		return
	}
	m.EventsCreated.Inc()
}

func (m *Metrics) IncApplicationCreated() {
	if m == nil {
		return
	}
	m.ApplicationsCreated.Inc()
}

func (m *Metrics) IncApplicationDecided(status string) {
	if m == nil {
		return
	}
	m.ApplicationsDecided.WithLabelValues(status).Inc()
}

func (m *Metrics) IncApplicationCancelled() {
	if m == nil {
		return
	}
	m.ApplicationsCanceled.Inc()
}

func (m *Metrics) IncApplyConflict() {
	if m == nil {
		return
	}
	m.ApplyConflicts.Inc()
}

func (m *Metrics) IncAuditRelayed(outcome string) {
	if m == nil {
		return
	}
	m.AuditRelayed.WithLabelValues(outcome).Inc()
}
