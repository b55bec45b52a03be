package domain

import (
	"context"
	"time"
)

// WebhookNotification is a vendor webhook payload reduced to the fields the
// processor cares about. VendorStatus keeps the gateway's own vocabulary; it is
// mapped to a PaymentEvent by the owning gateway adapter.
type WebhookNotification struct {
	MerchantOrderID string
	VendorStatus    string
	Amount          int64
	PaymentTime     time.Time
}

// GatewayStatus is the gateway's authoritative view of an order, as returned by
// its status-query endpoint. Customer fields may be empty depending on vendor.
type GatewayStatus struct {
	MerchantOrderID string
	VendorStatus    string
	Amount          int64
	PaymentTime     time.Time
	CustomerName    string
	Email           string
	Phone           string
}

// PaymentSession is what the vendor hands back when an order is registered for
// checkout.
type PaymentSession struct {
	SessionID  string
	PaymentURL string
}

// PaymentGateway is the capability a payment vendor exposes to the core. One
// implementation per vendor; processors stay vendor-agnostic.
type PaymentGateway interface {
	Name() string

	// SignatureHeaders returns the vendor's signature and timestamp header
	// names. An empty timestamp header means the vendor does not sign over a
	// timestamp.
	SignatureHeaders() (signatureHeader, timestampHeader string)

	// VerifyWebhook authenticates an inbound notification against the exact
	// raw body bytes. Fail-closed: missing credentials or a digest mismatch
	// always reject.
	VerifyWebhook(timestamp, signature string, rawBody []byte) error

	ParseWebhook(rawBody []byte) (*WebhookNotification, error)

	// MapStatus translates the vendor status vocabulary to a lifecycle event.
	// Statuses outside the table yield ErrUnknownEvent.
	MapStatus(vendorStatus string) (PaymentEvent, error)

	CreateOrder(ctx context.Context, order *Order, returnURL string) (*PaymentSession, error)
	FetchStatus(ctx context.Context, merchantOrderID string) (*GatewayStatus, error)
}
