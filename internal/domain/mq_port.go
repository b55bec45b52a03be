package domain

import "time"

// OrderEvent is published to the operational topic on every order state change
// and on webhook-path persistence failures that were acked anyway.
type OrderEvent struct {
	EventID         string    `json:"event_id"`
	Type            string    `json:"type"`
	MerchantOrderID string    `json:"merchant_order_id"`
	OrderNumber     string    `json:"order_number,omitempty"`
	Status          string    `json:"status"`
	Amount          int64     `json:"amount"`
	Vendor          string    `json:"vendor,omitempty"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

const (
	EventTypeOrderCreated        = "order.created"
	EventTypeOrderCompleted      = "order.completed"
	EventTypeOrderFailed         = "order.failed"
	EventTypeWebhookStoreFailure = "webhook.store_failure"
	EventTypeWebhookUnparsed     = "webhook.unparsed"
)

type PublisherPort interface {
	PublishOrderEvent(event OrderEvent) error
}
