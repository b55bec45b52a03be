package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coursedesk/payment-order-service/internal/domain"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/metrics"
)

// promauto registers against the default registry, so the metrics are built
// once for the whole test binary.
var testMetrics = metrics.NewPaymentMetrics()

type fakeOrderRepo struct {
	mu             sync.Mutex
	orders         map[string]*domain.Order
	failTransition error
	commits        int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.MerchantOrderID]; ok {
		return nil
	}
	clone := *order
	r.orders[order.MerchantOrderID] = &clone
	return nil
}

func (r *fakeOrderRepo) TransitionOrder(_ context.Context, merchantOrderID string, newStatus domain.OrderStatus, orderNumber string, transactionTime time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTransition != nil {
		return 0, r.failTransition
	}
	order, ok := r.orders[merchantOrderID]
	if !ok || order.Status != domain.StatusPending {
		return 0, nil
	}
	order.Status = newStatus
	if orderNumber != "" {
		order.OrderNumber = orderNumber
	}
	order.TransactionTime = &transactionTime
	order.UpdatedAt = time.Now()
	r.commits++
	return 1, nil
}

func (r *fakeOrderRepo) GetOrderByMerchantOrderID(_ context.Context, merchantOrderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[merchantOrderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *fakeOrderRepo) FindStalePendingOrders(_ context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []*domain.Order
	for _, order := range r.orders {
		if order.Status == domain.StatusPending && order.CreatedAt.Before(cutoff) {
			clone := *order
			stale = append(stale, &clone)
			if len(stale) == limit {
				break
			}
		}
	}
	return stale, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (p *fakePublisher) PublishOrderEvent(event domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) eventsOfType(eventType string) []domain.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []domain.OrderEvent
	for _, event := range p.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

// fakeGateway signs like a real vendor (HMAC-SHA256 over timestamp ++ body,
// hex) so signature tests exercise actual digest comparison.
type fakeGateway struct {
	name        string
	secret      string
	status      *domain.GatewayStatus
	statusErr   error
	fetchCalls  int
	createCalls int
	mu          sync.Mutex
}

var fakeStatusEvents = map[string]domain.PaymentEvent{
	"SUCCESS":      domain.EventPaymentSuccess,
	"PAID":         domain.EventPaymentSuccess,
	"FAILED":       domain.EventPaymentFailed,
	"USER_DROPPED": domain.EventPaymentDropped,
	"ACTIVE":       domain.EventPaymentDropped,
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) SignatureHeaders() (string, string) {
	return "x-webhook-signature", "x-webhook-timestamp"
}

func (g *fakeGateway) sign(timestamp string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *fakeGateway) VerifyWebhook(timestamp, signature string, rawBody []byte) error {
	if timestamp == "" || signature == "" {
		return domain.ErrSignatureMissing
	}
	if !hmac.Equal([]byte(g.sign(timestamp, rawBody)), []byte(signature)) {
		return domain.ErrSignatureMismatch
	}
	return nil
}

func (g *fakeGateway) ParseWebhook(rawBody []byte) (*domain.WebhookNotification, error) {
	var notification domain.WebhookNotification
	if err := json.Unmarshal(rawBody, &notification); err != nil {
		return nil, err
	}
	if notification.MerchantOrderID == "" {
		return nil, errors.New("webhook without merchant_order_id")
	}
	return &notification, nil
}

func (g *fakeGateway) MapStatus(vendorStatus string) (domain.PaymentEvent, error) {
	event, ok := fakeStatusEvents[vendorStatus]
	if !ok {
		return "", domain.ErrUnknownEvent
	}
	return event, nil
}

func (g *fakeGateway) CreateOrder(_ context.Context, order *domain.Order, _ string) (*domain.PaymentSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	return &domain.PaymentSession{SessionID: "session-" + order.MerchantOrderID}, nil
}

func (g *fakeGateway) FetchStatus(_ context.Context, _ string) (*domain.GatewayStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchCalls++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.status, nil
}
