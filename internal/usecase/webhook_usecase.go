package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coursedesk/payment-order-service/internal/domain"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

type WebhookUsecase interface {
	HandleWebhook(ctx context.Context, vendor string, headers http.Header, rawBody []byte) error
}

type DefaultWebhookUsecase struct {
	OrderRepo domain.OrderRepository
	Gateways  map[string]domain.PaymentGateway
	Publisher domain.PublisherPort
	Metrics   *metrics.PaymentMetrics
}

func NewDefaultWebhookUsecase(
	orderRepo domain.OrderRepository,
	gateways map[string]domain.PaymentGateway,
	publisher domain.PublisherPort,
	paymentMetrics *metrics.PaymentMetrics) *DefaultWebhookUsecase {

	return &DefaultWebhookUsecase{
		OrderRepo: orderRepo,
		Gateways:  gateways,
		Publisher: publisher,
		Metrics:   paymentMetrics,
	}
}

// HandleWebhook runs verification, interpretation and the guarded transition
// for one inbound notification. Only authentication failures bubble up to the
// caller: once a notification is authenticated it is always acked, otherwise
// the gateway keeps redelivering a webhook we can never accept.
func (uc *DefaultWebhookUsecase) HandleWebhook(ctx context.Context, vendor string, headers http.Header, rawBody []byte) error {
	gateway, ok := uc.Gateways[vendor]
	if !ok {
		return domain.ErrUnknownGateway
	}

	start := time.Now()
	defer func() {
		uc.Metrics.WebhookProcessingDuration.WithLabelValues(vendor).Observe(time.Since(start).Seconds())
	}()

	signatureHeader, timestampHeader := gateway.SignatureHeaders()
	signature := headers.Get(signatureHeader)
	timestamp := ""
	if timestampHeader != "" {
		timestamp = headers.Get(timestampHeader)
	}

	// Authentication works on the exact raw body bytes. Anything mutating
	// happens strictly after this point.
	if err := gateway.VerifyWebhook(timestamp, signature, rawBody); err != nil {
		uc.Metrics.WebhooksRejectedTotal.WithLabelValues(vendor, rejectionReason(err)).Inc()
		slog.Warn("webhook rejected", "vendor", vendor, "error", err.Error())
		return err
	}

	notification, err := gateway.ParseWebhook(rawBody)
	if err != nil {
		// The delivery is authenticated, so it is acked even though the body is
		// unreadable: a permanent 4xx would make the gateway redeliver forever.
		// The orders it concerns are repaired by reconciliation.
		uc.Metrics.WebhooksUnparsedTotal.WithLabelValues(vendor).Inc()
		slog.Error("authenticated webhook with unreadable body acked", "vendor", vendor, "error", err.Error())
		uc.publish(domain.OrderEvent{
			EventID:   uuid.New().String(),
			Type:      domain.EventTypeWebhookUnparsed,
			Vendor:    vendor,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return nil
	}

	event, err := gateway.MapStatus(notification.VendorStatus)
	if err != nil {
		// Out-of-table vendor status. Ack so the gateway stops redelivering.
		uc.Metrics.WebhooksReceivedTotal.WithLabelValues(vendor, "unknown").Inc()
		slog.Warn("webhook with unmapped status ignored",
			"vendor", vendor,
			"merchant_order_id", notification.MerchantOrderID,
			"vendor_status", notification.VendorStatus)
		return nil
	}
	uc.Metrics.WebhooksReceivedTotal.WithLabelValues(vendor, string(event)).Inc()

	// The conditional update enforces the real PENDING precondition; Apply is
	// evaluated against PENDING because that is the only state it can hit.
	target, err := domain.Apply(domain.StatusPending, event)
	if err != nil {
		slog.Warn("webhook event not applicable", "vendor", vendor, "event", string(event), "error", err.Error())
		return nil
	}
	if target == domain.StatusPending {
		slog.Info("payment dropped, order stays pending",
			"vendor", vendor,
			"merchant_order_id", notification.MerchantOrderID)
		return nil
	}

	orderNumber := ""
	if target == domain.StatusSuccess {
		orderNumber, err = newOrderNumber()
		if err != nil {
			uc.ackDespiteFailure(vendor, notification, err)
			return nil
		}
	}

	transactionTime := notification.PaymentTime
	if transactionTime.IsZero() {
		transactionTime = time.Now()
	}

	rows, err := uc.OrderRepo.TransitionOrder(ctx, notification.MerchantOrderID, target, orderNumber, transactionTime)
	if err != nil {
		// Fail-open by contract: the delivery is durably authenticated, so we
		// ack and let reconciliation repair the gap.
		uc.ackDespiteFailure(vendor, notification, err)
		return nil
	}
	if rows == 0 {
		// Zero rows means either a replay against a terminal order or an order
		// that was never persisted locally. The second case is the degraded
		// recovery signal reconciliation watches for, so tell them apart.
		if _, err := uc.OrderRepo.GetOrderByMerchantOrderID(ctx, notification.MerchantOrderID); errors.Is(err, domain.ErrOrderNotFound) {
			uc.Metrics.WebhookOrphansTotal.WithLabelValues(vendor).Inc()
			slog.Warn("webhook for order with no local row, leaving repair to reconciliation",
				"vendor", vendor,
				"merchant_order_id", notification.MerchantOrderID,
				"event", string(event))
			return nil
		}
		uc.Metrics.TransitionReplaysTotal.WithLabelValues("webhook").Inc()
		slog.Info("webhook replay ignored, order already final",
			"vendor", vendor,
			"merchant_order_id", notification.MerchantOrderID,
			"event", string(event))
		return nil
	}

	uc.Metrics.OrderTransitionsTotal.WithLabelValues(string(target), "webhook").Inc()

	order, err := uc.OrderRepo.GetOrderByMerchantOrderID(ctx, notification.MerchantOrderID)
	if err != nil {
		slog.Error("failed to reload order after transition",
			"merchant_order_id", notification.MerchantOrderID, "error", err.Error())
		return nil
	}
	if notification.Amount != 0 && notification.Amount != order.Amount {
		// Gateway-reported amounts are for consistency checks only, never for
		// crediting.
		slog.Warn("gateway amount differs from local order",
			"merchant_order_id", order.MerchantOrderID,
			"local_amount", order.Amount,
			"gateway_amount", notification.Amount)
	}

	eventType := domain.EventTypeOrderFailed
	if target == domain.StatusSuccess {
		eventType = domain.EventTypeOrderCompleted
	}
	uc.publish(domain.OrderEvent{
		EventID:         uuid.New().String(),
		Type:            eventType,
		MerchantOrderID: order.MerchantOrderID,
		OrderNumber:     order.OrderNumber,
		Status:          string(order.Status),
		Amount:          order.Amount,
		Vendor:          vendor,
		Timestamp:       time.Now(),
	})

	return nil
}

func (uc *DefaultWebhookUsecase) ackDespiteFailure(vendor string, notification *domain.WebhookNotification, cause error) {
	slog.Error("webhook acked despite persistence failure",
		"vendor", vendor,
		"merchant_order_id", notification.MerchantOrderID,
		"error", cause.Error())
	uc.Metrics.WebhookStoreFailuresTotal.WithLabelValues(vendor).Inc()
	uc.publish(domain.OrderEvent{
		EventID:         uuid.New().String(),
		Type:            domain.EventTypeWebhookStoreFailure,
		MerchantOrderID: notification.MerchantOrderID,
		Status:          string(domain.StatusPending),
		Amount:          notification.Amount,
		Vendor:          vendor,
		Error:           cause.Error(),
		Timestamp:       time.Now(),
	})
}

func (uc *DefaultWebhookUsecase) publish(event domain.OrderEvent) {
	if err := uc.Publisher.PublishOrderEvent(event); err != nil {
		slog.Error("failed to publish OrderEvent", "type", event.Type, "error", err.Error())
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSignatureMissing):
		return "missing"
	case errors.Is(err, domain.ErrSignatureMismatch):
		return "mismatch"
	default:
		return "other"
	}
}
