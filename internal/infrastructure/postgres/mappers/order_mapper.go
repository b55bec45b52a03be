package mappers

import (
	"github.com/coursedesk/payment-order-service/internal/domain"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/postgres/models"
)

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	model := models.OrderModel{
		MerchantOrderID: order.MerchantOrderID,
		Status:          order.Status,
		Amount:          order.Amount,
		CustomerName:    order.CustomerName,
		Email:           order.Email,
		Phone:           order.Phone,
		CourseReference: order.CourseReference,
		TransactionTime: order.TransactionTime,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.OrderNumber != "" {
		orderNumber := order.OrderNumber
		model.OrderNumber = &orderNumber
	}
	return &model
}

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	order := domain.Order{
		MerchantOrderID: model.MerchantOrderID,
		Status:          model.Status,
		Amount:          model.Amount,
		CustomerName:    model.CustomerName,
		Email:           model.Email,
		Phone:           model.Phone,
		CourseReference: model.CourseReference,
		TransactionTime: model.TransactionTime,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
	if model.OrderNumber != nil {
		order.OrderNumber = *model.OrderNumber
	}
	return &order
}
