package metrics

import "github.com/prometheus/client_golang/prometheus"

// OutboxMetrics tracks email outbox delivery outcomes.
type OutboxMetrics struct {
	sent    *prometheus.CounterVec
	retried *prometheus.CounterVec
	parked  prometheus.Counter
}

// NewOutboxMetrics registers the outbox metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "email_outbox_sent_total",
		Help: "Emails delivered by the outbox worker.",
	}, []string{"kind"})
	retried := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "email_outbox_retried_total",
		Help: "Delivery attempts that failed and were rescheduled.",
	}, []string{"kind"})
	parked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "email_outbox_dlq_total",
		Help: "Outbox rows parked in the dead letter queue.",
	})
	reg.MustRegister(sent, retried, parked)
	return &OutboxMetrics{sent: sent, retried: retried, parked: parked}
}

// IncSent records a delivered email of the given kind.
func (o *OutboxMetrics) IncSent(kind string) {
	if o == nil || o.sent == nil {
		return
	}
	o.sent.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncRetried records a failed attempt that will be retried.
func (o *OutboxMetrics) IncRetried(kind string) {
	if o == nil || o.retried == nil {
		return
	}
	o.retried.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncParked records a row moved to the DLQ.
func (o *OutboxMetrics) IncParked() {
	if o == nil || o.parked == nil {
		return
	}
	o.parked.Inc()
}
