package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics holds the webhook and reconciliation instrumentation.
type PaymentMetrics struct {
	WebhooksReceivedTotal prometheus.CounterVec
	WebhooksRejectedTotal prometheus.CounterVec

	WebhooksUnparsedTotal prometheus.CounterVec
	WebhookOrphansTotal   prometheus.CounterVec

	OrderTransitionsTotal     prometheus.CounterVec
	TransitionReplaysTotal    prometheus.CounterVec
	WebhookStoreFailuresTotal prometheus.CounterVec

	ReconciliationsTotal prometheus.CounterVec

	WebhookProcessingDuration prometheus.HistogramVec
}

func NewPaymentMetrics() *PaymentMetrics {
	return &PaymentMetrics{
		WebhooksReceivedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_webhooks_received_total",
				Help: "Authenticated webhook notifications received",
			},
			[]string{"vendor", "event"},
		),

		WebhooksRejectedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_webhooks_rejected_total",
				Help: "Webhook notifications rejected before any mutation",
			},
			[]string{"vendor", "reason"},
		),

		WebhooksUnparsedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_webhooks_unparsed_total",
				Help: "Authenticated webhook notifications acked with an unreadable body",
			},
			[]string{"vendor"},
		),

		WebhookOrphansTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_webhook_orphans_total",
				Help: "Webhook notifications for orders with no local row",
			},
			[]string{"vendor"},
		),

		OrderTransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_order_transitions_total",
				Help: "Committed order status transitions",
			},
			[]string{"status", "source"},
		),

		TransitionReplaysTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_transition_replays_total",
				Help: "Transitions observed as no-ops because the order was already terminal",
			},
			[]string{"source"},
		),

		WebhookStoreFailuresTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_webhook_store_failures_total",
				Help: "Webhook deliveries acked despite a persistence failure",
			},
			[]string{"vendor"},
		),

		ReconciliationsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_reconciliations_total",
				Help: "Reconciliation attempts by outcome",
			},
			[]string{"outcome"},
		),

		WebhookProcessingDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payment_webhook_processing_seconds",
				Help:    "Webhook processing time from verification to ack",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"vendor"},
		),
	}
}
