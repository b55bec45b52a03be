package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coursedesk/payment-order-service/internal/domain"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/postgres/mappers"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	// Retried initiation requests must not fail on the duplicate key.
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "merchant_order_id"}},
			DoNothing: true,
		}).
		Create(orderModel).Error
	if err != nil {
		return err
	}
	return nil
}

// TransitionOrder is the only write that moves an order out of PENDING. The
// status precondition in the WHERE clause makes concurrent deliveries race on
// a single conditional update: the first commit wins, everyone else sees zero
// rows affected.
func (r *DefaultOrderRepository) TransitionOrder(
	ctx context.Context,
	merchantOrderID string,
	newStatus domain.OrderStatus,
	orderNumber string,
	transactionTime time.Time,
) (int64, error) {
	updates := map[string]interface{}{
		"status":           newStatus,
		"transaction_time": transactionTime,
		"updated_at":       time.Now(),
	}
	if orderNumber != "" {
		updates["order_number"] = orderNumber
	}

	result := r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("merchant_order_id = ? AND status = ?", merchantOrderID, domain.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *DefaultOrderRepository) GetOrderByMerchantOrderID(ctx context.Context, merchantOrderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).First(&order, "merchant_order_id = ?", merchantOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) FindStalePendingOrders(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	err := r.DB.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.StatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&orderModels).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, len(orderModels))
	for i, orderModel := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModel)
	}

	return orders, nil
}
