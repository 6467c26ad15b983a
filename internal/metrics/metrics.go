// Package metrics holds the Prometheus instrumentation for the
// capability core. All recorder methods are nil-receiver safe so
// components can run without metrics wired (tests, embedded use).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the capability core.
type Metrics struct {
	registry *prometheus.Registry

	// Discovery metrics
	DiscoveryRequestsTotal *prometheus.CounterVec

	// Permission metrics
	PermissionChecksTotal *prometheus.CounterVec
	WriteDenialsTotal     prometheus.Counter

	// Pending-action metrics
	ActionsProposedTotal  *prometheus.CounterVec
	ActionsConfirmedTotal *prometheus.CounterVec
	ActionsCancelledTotal *prometheus.CounterVec
	ActionsExpiredTotal   prometheus.Counter
	ActionsLive           prometheus.Gauge
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		DiscoveryRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_requests_total",
				Help: "Total number of tool discovery requests",
			},
			[]string{"mode"},
		),

		PermissionChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permission_checks_total",
				Help: "Total number of chat permission checks",
			},
			[]string{"source", "permission"},
		),
		WriteDenialsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "permission_write_denials_total",
				Help: "Total number of denied write permission checks",
			},
		),

		ActionsProposedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pending_actions_proposed_total",
				Help: "Total number of proposed pending actions",
			},
			[]string{"type"},
		),
		ActionsConfirmedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pending_actions_confirmed_total",
				Help: "Total number of confirmed pending actions",
			},
			[]string{"type", "status"},
		),
		ActionsCancelledTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pending_actions_cancelled_total",
				Help: "Total number of cancelled pending actions",
			},
			[]string{"type"},
		),
		ActionsExpiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pending_actions_expired_total",
				Help: "Total number of pending actions removed by expiry",
			},
		),
		ActionsLive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pending_actions_live",
				Help: "Number of live pending actions",
			},
		),
	}

	registry.MustRegister(
		m.DiscoveryRequestsTotal,
		m.PermissionChecksTotal,
		m.WriteDenialsTotal,
		m.ActionsProposedTotal,
		m.ActionsConfirmedTotal,
		m.ActionsCancelledTotal,
		m.ActionsExpiredTotal,
		m.ActionsLive,
	)

	return m
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDiscoveryRequest counts one discovery request by mode.
func (m *Metrics) RecordDiscoveryRequest(mode string) {
	if m == nil {
		return
	}
	m.DiscoveryRequestsTotal.WithLabelValues(mode).Inc()
}

// RecordPermissionCheck counts one read/respond permission check.
func (m *Metrics) RecordPermissionCheck(source, permission string) {
	if m == nil {
		return
	}
	m.PermissionChecksTotal.WithLabelValues(source, permission).Inc()
}

// RecordWriteDenial counts one denied write check.
func (m *Metrics) RecordWriteDenial() {
	if m == nil {
		return
	}
	m.WriteDenialsTotal.Inc()
}

// RecordActionProposed counts one proposed pending action.
func (m *Metrics) RecordActionProposed(actionType string) {
	if m == nil {
		return
	}
	m.ActionsProposedTotal.WithLabelValues(actionType).Inc()
}

// RecordActionConfirmed counts one confirmed pending action.
func (m *Metrics) RecordActionConfirmed(actionType, status string) {
	if m == nil {
		return
	}
	m.ActionsConfirmedTotal.WithLabelValues(actionType, status).Inc()
}

// RecordActionCancelled counts one cancelled pending action.
func (m *Metrics) RecordActionCancelled(actionType string) {
	if m == nil {
		return
	}
	m.ActionsCancelledTotal.WithLabelValues(actionType).Inc()
}

// RecordActionsExpired counts actions removed by the expiry sweep.
func (m *Metrics) RecordActionsExpired(count int) {
	if m == nil {
		return
	}
	m.ActionsExpiredTotal.Add(float64(count))
}

// SetActionsLive updates the live pending-action gauge.
func (m *Metrics) SetActionsLive(count int) {
	if m == nil {
		return
	}
	m.ActionsLive.Set(float64(count))
}
