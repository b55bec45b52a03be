package models

import (
	"time"

	"github.com/coursedesk/payment-order-service/internal/domain"
)

type OrderModel struct {
	MerchantOrderID string             `gorm:"primaryKey"`
	OrderNumber     *string            `gorm:"uniqueIndex:idx_order_number"`
	Status          domain.OrderStatus `gorm:"index:idx_status_created"`
	Amount          int64
	CustomerName    string
	Email           string
	Phone           string
	CourseReference string
	TransactionTime *time.Time
	CreatedAt       time.Time `gorm:"index:idx_status_created"`
	UpdatedAt       time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}
