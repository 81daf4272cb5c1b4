package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records payment lifecycle and webhook processing counters.
type PaymentMetrics struct {
	transitions     *prometheus.CounterVec
	webhooks        *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	ledgerRetries   prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_transitions_total",
		Help: "Payment status transitions by target status and source.",
	}, []string{"status", "source"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhooks_total",
		Help: "Gateway webhook deliveries by outcome.",
	}, []string{"outcome"})
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_gateway_request_seconds",
		Help:    "Duration of outbound gateway requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	ledgerRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_balance_retries_total",
		Help: "Optimistic balance update retries in the ledger engine.",
	})
	reg.MustRegister(transitions, webhooks, gatewayDuration, ledgerRetries)
	return &PaymentMetrics{
		transitions:     transitions,
		webhooks:        webhooks,
		gatewayDuration: gatewayDuration,
		ledgerRetries:   ledgerRetries,
	}
}

// IncTransition increments the transition counter for the target status.
func (p *PaymentMetrics) IncTransition(status, source string) {
	if p == nil || p.transitions == nil {
		return
	}
	p.transitions.WithLabelValues(normalizeLabel(status), normalizeLabel(source)).Inc()
}

// IncWebhook increments the webhook counter for the given outcome.
func (p *PaymentMetrics) IncWebhook(outcome string) {
	if p == nil || p.webhooks == nil {
		return
	}
	p.webhooks.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveGatewayDuration records the duration of an outbound gateway call.
func (p *PaymentMetrics) ObserveGatewayDuration(operation string, duration time.Duration) {
	if p == nil || p.gatewayDuration == nil {
		return
	}
	p.gatewayDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncLedgerRetry increments the ledger optimistic retry counter.
func (p *PaymentMetrics) IncLedgerRetry() {
	if p == nil || p.ledgerRetries == nil {
		return
	}
	p.ledgerRetries.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
