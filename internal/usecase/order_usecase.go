package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/coursedesk/payment-order-service/internal/domain"
	orderdto "github.com/coursedesk/payment-order-service/internal/usecase/dto/order"
	"github.com/google/uuid"
)

type OrderUsecase interface {
	CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderOutput, error)
	GetOrder(ctx context.Context, merchantOrderID string) (*domain.Order, error)
}

type DefaultOrderUsecase struct {
	OrderRepo domain.OrderRepository
	Gateway   domain.PaymentGateway
	Publisher domain.PublisherPort
}

func NewDefaultOrderUsecase(
	orderRepo domain.OrderRepository,
	gateway domain.PaymentGateway,
	publisher domain.PublisherPort) *DefaultOrderUsecase {

	return &DefaultOrderUsecase{
		OrderRepo: orderRepo,
		Gateway:   gateway,
		Publisher: publisher,
	}
}

// CreateOrder persists the PENDING record before handing the order to the
// gateway, so a webhook can never reference an order we do not know about.
func (uc *DefaultOrderUsecase) CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*orderdto.CreateOrderOutput, error) {
	order := &domain.Order{
		MerchantOrderID: input.MerchantOrderID,
		Status:          domain.StatusPending,
		Amount:          input.Amount,
		CustomerName:    input.CustomerName,
		Email:           input.Email,
		Phone:           input.Phone,
		CourseReference: input.CourseReference,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := uc.OrderRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	session, err := uc.Gateway.CreateOrder(ctx, order, input.ReturnURL)
	if err != nil {
		return nil, err
	}

	event := domain.OrderEvent{
		EventID:         uuid.New().String(),
		Type:            domain.EventTypeOrderCreated,
		MerchantOrderID: order.MerchantOrderID,
		Status:          string(order.Status),
		Amount:          order.Amount,
		Vendor:          uc.Gateway.Name(),
		Timestamp:       time.Now(),
	}
	if err := uc.Publisher.PublishOrderEvent(event); err != nil {
		slog.Error("failed to publish OrderEvent:created", "error", err.Error())
	}

	return &orderdto.CreateOrderOutput{
		MerchantOrderID:  order.MerchantOrderID,
		PaymentSessionID: session.SessionID,
		PaymentURL:       session.PaymentURL,
		Vendor:           uc.Gateway.Name(),
	}, nil
}

func (uc *DefaultOrderUsecase) GetOrder(ctx context.Context, merchantOrderID string) (*domain.Order, error) {
	return uc.OrderRepo.GetOrderByMerchantOrderID(ctx, merchantOrderID)
}
