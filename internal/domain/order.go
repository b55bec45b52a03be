package domain

import "time"

type OrderStatus string

const (
	StatusPending OrderStatus = "PENDING"
	StatusSuccess OrderStatus = "SUCCESS"
	StatusFailed  OrderStatus = "FAILED"
)

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

type PaymentEvent string

const (
	EventPaymentSuccess PaymentEvent = "PAYMENT_SUCCESS"
	EventPaymentFailed  PaymentEvent = "PAYMENT_FAILED"
	EventPaymentDropped PaymentEvent = "PAYMENT_DROPPED"
)

type Order struct {
	MerchantOrderID string
	OrderNumber     string // assigned exactly once, when the order reaches SUCCESS
	Status          OrderStatus
	Amount          int64 // smallest currency unit (paise)
	CustomerName    string
	Email           string
	Phone           string
	CourseReference string
	TransactionTime *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
