package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/coursedesk/payment-order-service/internal/domain"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

type ReconcileUsecase interface {
	Reconcile(ctx context.Context, merchantOrderID string) (*domain.Order, error)
	ReconcileStalePending(ctx context.Context) error
}

type DefaultReconcileUsecase struct {
	OrderRepo  domain.OrderRepository
	Gateway    domain.PaymentGateway
	Publisher  domain.PublisherPort
	Metrics    *metrics.PaymentMetrics
	PendingAge time.Duration
	BatchSize  int
}

func NewDefaultReconcileUsecase(
	orderRepo domain.OrderRepository,
	gateway domain.PaymentGateway,
	publisher domain.PublisherPort,
	paymentMetrics *metrics.PaymentMetrics,
	pendingAge time.Duration,
	batchSize int) *DefaultReconcileUsecase {

	return &DefaultReconcileUsecase{
		OrderRepo:  orderRepo,
		Gateway:    gateway,
		Publisher:  publisher,
		Metrics:    paymentMetrics,
		PendingAge: pendingAge,
		BatchSize:  batchSize,
	}
}

// Reconcile pulls the gateway's authoritative status for one order and repairs
// local divergence through the same lifecycle-guarded conditional write the
// webhook path uses. Unlike that path this one is synchronous and client
// facing, so failures surface instead of being absorbed.
func (uc *DefaultReconcileUsecase) Reconcile(ctx context.Context, merchantOrderID string) (*domain.Order, error) {
	order, err := uc.OrderRepo.GetOrderByMerchantOrderID(ctx, merchantOrderID)
	if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		return nil, err
	}

	if order != nil && order.Status.Terminal() {
		uc.Metrics.ReconciliationsTotal.WithLabelValues("already_final").Inc()
		return order, nil
	}

	gatewayStatus, err := uc.Gateway.FetchStatus(ctx, merchantOrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			if order == nil {
				uc.Metrics.ReconciliationsTotal.WithLabelValues("not_found").Inc()
				return nil, domain.ErrOrderNotFound
			}
			// We know the order, the gateway does not: initiation never
			// reached it. The order stays PENDING.
			slog.Warn("gateway does not know order", "merchant_order_id", merchantOrderID)
			uc.Metrics.ReconciliationsTotal.WithLabelValues("gateway_unaware").Inc()
			return order, nil
		}
		uc.Metrics.ReconciliationsTotal.WithLabelValues("gateway_unavailable").Inc()
		return nil, err
	}

	event, err := uc.Gateway.MapStatus(gatewayStatus.VendorStatus)
	if err != nil {
		slog.Warn("gateway reported unmapped status",
			"merchant_order_id", merchantOrderID,
			"vendor_status", gatewayStatus.VendorStatus)
		if order == nil {
			return nil, domain.ErrOrderNotFound
		}
		uc.Metrics.ReconciliationsTotal.WithLabelValues("unknown_status").Inc()
		return order, nil
	}

	if order == nil {
		if event != domain.EventPaymentSuccess {
			uc.Metrics.ReconciliationsTotal.WithLabelValues("not_found").Inc()
			return nil, domain.ErrOrderNotFound
		}
		// Degraded recovery: the initiation step never persisted, but the
		// gateway holds a paid order. Rebuild a minimal PENDING record from
		// gateway-supplied data before transitioning.
		order = &domain.Order{
			MerchantOrderID: merchantOrderID,
			Status:          domain.StatusPending,
			Amount:          gatewayStatus.Amount,
			CustomerName:    gatewayStatus.CustomerName,
			Email:           gatewayStatus.Email,
			Phone:           gatewayStatus.Phone,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		}
		if err := uc.OrderRepo.CreateOrder(ctx, order); err != nil {
			uc.Metrics.ReconciliationsTotal.WithLabelValues("store_error").Inc()
			return nil, err
		}
		slog.Warn("reconstructed missing order from gateway data",
			"merchant_order_id", merchantOrderID,
			"amount", gatewayStatus.Amount)
	}

	target, err := domain.Apply(order.Status, event)
	if err != nil {
		// AlreadyFinal between our read and now: someone else won the race.
		uc.Metrics.ReconciliationsTotal.WithLabelValues("already_final").Inc()
		return uc.OrderRepo.GetOrderByMerchantOrderID(ctx, merchantOrderID)
	}
	if target == domain.StatusPending {
		uc.Metrics.ReconciliationsTotal.WithLabelValues("still_pending").Inc()
		return order, nil
	}

	orderNumber := ""
	if target == domain.StatusSuccess {
		orderNumber, err = newOrderNumber()
		if err != nil {
			return nil, err
		}
	}

	transactionTime := gatewayStatus.PaymentTime
	if transactionTime.IsZero() {
		transactionTime = time.Now()
	}

	rows, err := uc.OrderRepo.TransitionOrder(ctx, merchantOrderID, target, orderNumber, transactionTime)
	if err != nil {
		uc.Metrics.ReconciliationsTotal.WithLabelValues("store_error").Inc()
		return nil, err
	}
	if rows == 0 {
		uc.Metrics.TransitionReplaysTotal.WithLabelValues("reconcile").Inc()
	} else {
		uc.Metrics.OrderTransitionsTotal.WithLabelValues(string(target), "reconcile").Inc()
		uc.Metrics.ReconciliationsTotal.WithLabelValues("repaired").Inc()
		slog.Info("order repaired by reconciliation",
			"merchant_order_id", merchantOrderID,
			"status", string(target))
	}

	result, err := uc.OrderRepo.GetOrderByMerchantOrderID(ctx, merchantOrderID)
	if err != nil {
		return nil, err
	}

	if rows > 0 {
		eventType := domain.EventTypeOrderFailed
		if target == domain.StatusSuccess {
			eventType = domain.EventTypeOrderCompleted
		}
		event := domain.OrderEvent{
			EventID:         uuid.New().String(),
			Type:            eventType,
			MerchantOrderID: result.MerchantOrderID,
			OrderNumber:     result.OrderNumber,
			Status:          string(result.Status),
			Amount:          result.Amount,
			Vendor:          uc.Gateway.Name(),
			Timestamp:       time.Now(),
		}
		if err := uc.Publisher.PublishOrderEvent(event); err != nil {
			slog.Error("failed to publish OrderEvent", "type", event.Type, "error", err.Error())
		}
	}

	return result, nil
}

// ReconcileStalePending sweeps PENDING orders older than PendingAge through
// Reconcile. Per-order failures are logged and skipped so one broken order
// cannot stall the sweep.
func (uc *DefaultReconcileUsecase) ReconcileStalePending(ctx context.Context) error {
	cutoff := time.Now().Add(-uc.PendingAge)
	orders, err := uc.OrderRepo.FindStalePendingOrders(ctx, cutoff, uc.BatchSize)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if _, err := uc.Reconcile(ctx, order.MerchantOrderID); err != nil {
			slog.Error("stale order reconciliation failed",
				"merchant_order_id", order.MerchantOrderID,
				"error", err.Error())
		}
	}

	return nil
}
