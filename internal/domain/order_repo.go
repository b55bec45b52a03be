package domain

import (
	"context"
	"time"
)

type OrderRepository interface {
	// CreateOrder inserts a PENDING order. Inserting an already existing
	// merchant_order_id is a no-op, not an error, so retried initiation
	// requests stay safe.
	CreateOrder(ctx context.Context, order *Order) error

	// TransitionOrder moves an order out of PENDING with a single conditional
	// update and reports how many rows it touched. Zero rows means another
	// writer got there first (or the order is unknown); callers treat that as
	// an idempotent no-op.
	TransitionOrder(ctx context.Context, merchantOrderID string, newStatus OrderStatus, orderNumber string, transactionTime time.Time) (int64, error)

	GetOrderByMerchantOrderID(ctx context.Context, merchantOrderID string) (*Order, error)

	// FindStalePendingOrders returns PENDING orders created before cutoff,
	// oldest first, for the background reconciliation sweep.
	FindStalePendingOrders(ctx context.Context, cutoff time.Time, limit int) ([]*Order, error)
}
