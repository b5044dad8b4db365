// Package metrics exposes Prometheus counters for the matching core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nesvesk"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing,
// so services can be built without it in tests.
type Metrics struct {
	registry *prometheus.Registry

	invitationsSent     prometheus.Counter
	invitationsResolved *prometheus.CounterVec
	messagesSent        *prometheus.CounterVec
	notifications       *prometheus.CounterVec
	outboxJobs          *prometheus.GaugeVec
	sseClients          prometheus.GaugeFunc
}

// New registers every collector on a fresh registry. clientCount reports
// open SSE streams and may be nil.
func New(clientCount func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		invitationsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_sent_total",
			Help:      "Invitations created.",
		}),
		invitationsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_resolved_total",
			Help:      "Invitations accepted or declined.",
		}, []string{"status"}),
		messagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Messages posted, by payload kind.",
		}, []string{"kind"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification delivery attempts by kind and result.",
		}, []string{"kind", "result"}),
		outboxJobs: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_jobs",
			Help:      "Notification jobs by status.",
		}, []string{"status"}),
	}

	if clientCount != nil {
		m.sseClients = factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sse_clients",
			Help:      "Open live update streams.",
		}, func() float64 { return float64(clientCount()) })
	}

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// InvitationSent counts a created invitation.
func (m *Metrics) InvitationSent() {
	if m == nil {
		return
	}
	m.invitationsSent.Inc()
}

// InvitationResolved counts an accepted or declined invitation.
func (m *Metrics) InvitationResolved(status string) {
	if m == nil {
		return
	}
	m.invitationsResolved.WithLabelValues(status).Inc()
}

// MessageSent counts a posted message. kind is "text" or "event_card".
func (m *Metrics) MessageSent(kind string) {
	if m == nil {
		return
	}
	m.messagesSent.WithLabelValues(kind).Inc()
}

// NotificationAttempt counts one delivery attempt. result is "sent",
// "retry" or "failed".
func (m *Metrics) NotificationAttempt(kind, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

// SetOutboxJobs records the number of outbox jobs in status.
func (m *Metrics) SetOutboxJobs(status string, n int) {
	if m == nil {
		return
	}
	m.outboxJobs.WithLabelValues(status).Set(float64(n))
}
