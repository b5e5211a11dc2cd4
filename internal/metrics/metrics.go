package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the payment-flow counters. A nil *Metrics is safe to use so
// tests can skip registration entirely.
type Metrics struct {
	WebhooksReceivedTotal   prometheus.Counter
	WebhooksConfirmedTotal  prometheus.Counter
	WebhooksUnresolvedTotal prometheus.Counter

	PaymentLinksCreatedTotal prometheus.Counter
	EmbeddedSessionsTotal    prometheus.Counter
	RefundsTotal             *prometheus.CounterVec

	GatewayRequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WebhooksReceivedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "deluxe_webhooks_received_total",
			Help: "Webhook deliveries received from the gateway",
		}),
		WebhooksConfirmedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "deluxe_webhooks_confirmed_total",
			Help: "Webhook deliveries that transitioned an order to paid",
		}),
		WebhooksUnresolvedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "deluxe_webhooks_unresolved_total",
			Help: "Webhook deliveries with no matching order or non-approved status",
		}),
		PaymentLinksCreatedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "deluxe_payment_links_created_total",
			Help: "Hosted payment links created at the gateway",
		}),
		EmbeddedSessionsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "deluxe_embedded_sessions_total",
			Help: "Embedded payment session tokens issued",
		}),
		RefundsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deluxe_refunds_total",
			Help: "Refund attempts by outcome",
		}, []string{"outcome"}),
		GatewayRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deluxe_gateway_request_duration_seconds",
			Help:    "Outbound Deluxe call latency by endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) IncWebhookReceived() {
	if m != nil {
		m.WebhooksReceivedTotal.Inc()
	}
}

func (m *Metrics) IncWebhookConfirmed() {
	if m != nil {
		m.WebhooksConfirmedTotal.Inc()
	}
}

func (m *Metrics) IncWebhookUnresolved() {
	if m != nil {
		m.WebhooksUnresolvedTotal.Inc()
	}
}

func (m *Metrics) IncPaymentLinkCreated() {
	if m != nil {
		m.PaymentLinksCreatedTotal.Inc()
	}
}

func (m *Metrics) IncEmbeddedSession() {
	if m != nil {
		m.EmbeddedSessionsTotal.Inc()
	}
}

func (m *Metrics) IncRefund(outcome string) {
	if m != nil {
		m.RefundsTotal.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveGatewayRequest(endpoint string, seconds float64) {
	if m != nil {
		m.GatewayRequestDuration.WithLabelValues(endpoint).Observe(seconds)
	}
}
