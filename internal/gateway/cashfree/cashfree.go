package cashfree

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coursedesk/payment-order-service/internal/domain"
)

const apiVersion = "2023-08-01"

// statusEvents is the explicit vendor-status table. Both the webhook
// payment_status vocabulary and the order-status vocabulary of the status-query
// endpoint go through it, so webhook and reconciliation paths agree.
var statusEvents = map[string]domain.PaymentEvent{
	"SUCCESS":       domain.EventPaymentSuccess,
	"PAID":          domain.EventPaymentSuccess,
	"FAILED":        domain.EventPaymentFailed,
	"CANCELLED":     domain.EventPaymentFailed,
	"VOID":          domain.EventPaymentFailed,
	"EXPIRED":       domain.EventPaymentFailed,
	"TERMINATED":    domain.EventPaymentFailed,
	"USER_DROPPED":  domain.EventPaymentDropped,
	"ACTIVE":        domain.EventPaymentDropped,
	"PENDING":       domain.EventPaymentDropped,
	"NOT_ATTEMPTED": domain.EventPaymentDropped,
}

type Client struct {
	BaseURL       string
	ClientID      string
	ClientSecret  string
	WebhookSecret string
	HTTPClient    *http.Client
}

func NewClient(baseURL, clientID, clientSecret, webhookSecret string) *Client {
	return &Client{
		BaseURL:       baseURL,
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		WebhookSecret: webhookSecret,
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Name() string {
	return "cashfree"
}

func (c *Client) SignatureHeaders() (string, string) {
	return "x-webhook-signature", "x-webhook-timestamp"
}

// VerifyWebhook checks the HMAC-SHA256 of timestamp ++ raw body against the
// presented signature. The body must be the exact bytes off the wire:
// re-serializing parsed JSON changes the digest.
func (c *Client) VerifyWebhook(timestamp, signature string, rawBody []byte) error {
	if timestamp == "" || signature == "" {
		return domain.ErrSignatureMissing
	}

	mac := hmac.New(sha256.New, []byte(c.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrSignatureMismatch
	}

	return nil
}

type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID     string  `json:"order_id"`
			OrderAmount float64 `json:"order_amount"`
		} `json:"order"`
		Payment struct {
			PaymentStatus string    `json:"payment_status"`
			PaymentAmount float64   `json:"payment_amount"`
			PaymentTime   time.Time `json:"payment_time"`
		} `json:"payment"`
	} `json:"data"`
}

func (c *Client) ParseWebhook(rawBody []byte) (*domain.WebhookNotification, error) {
	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("parsing cashfree webhook: %w", err)
	}
	if payload.Data.Order.OrderID == "" {
		return nil, fmt.Errorf("cashfree webhook without order_id")
	}

	return &domain.WebhookNotification{
		MerchantOrderID: payload.Data.Order.OrderID,
		VendorStatus:    payload.Data.Payment.PaymentStatus,
		Amount:          rupeesToPaise(payload.Data.Payment.PaymentAmount),
		PaymentTime:     payload.Data.Payment.PaymentTime,
	}, nil
}

func (c *Client) MapStatus(vendorStatus string) (domain.PaymentEvent, error) {
	event, ok := statusEvents[vendorStatus]
	if !ok {
		return "", domain.ErrUnknownEvent
	}
	return event, nil
}

type createOrderRequest struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       struct {
		ReturnURL string `json:"return_url,omitempty"`
	} `json:"order_meta"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

type createOrderResponse struct {
	PaymentSessionID string `json:"payment_session_id"`
}

func (c *Client) CreateOrder(ctx context.Context, order *domain.Order, returnURL string) (*domain.PaymentSession, error) {
	reqBody := createOrderRequest{
		OrderID:       order.MerchantOrderID,
		OrderAmount:   paiseToRupees(order.Amount),
		OrderCurrency: "INR",
		CustomerDetails: customerDetails{
			CustomerID:    order.MerchantOrderID,
			CustomerName:  order.CustomerName,
			CustomerEmail: order.Email,
			CustomerPhone: order.Phone,
		},
	}
	reqBody.OrderMeta.ReturnURL = returnURL

	var resp createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/pg/orders", &reqBody, &resp); err != nil {
		return nil, err
	}

	return &domain.PaymentSession{SessionID: resp.PaymentSessionID}, nil
}

type orderStatusResponse struct {
	OrderID         string    `json:"order_id"`
	OrderStatus     string    `json:"order_status"`
	OrderAmount     float64   `json:"order_amount"`
	PaymentTime     time.Time `json:"payment_time"`
	CustomerDetails struct {
		CustomerName  string `json:"customer_name"`
		CustomerEmail string `json:"customer_email"`
		CustomerPhone string `json:"customer_phone"`
	} `json:"customer_details"`
}

func (c *Client) FetchStatus(ctx context.Context, merchantOrderID string) (*domain.GatewayStatus, error) {
	var resp orderStatusResponse
	if err := c.do(ctx, http.MethodGet, "/pg/orders/"+merchantOrderID, nil, &resp); err != nil {
		return nil, err
	}

	return &domain.GatewayStatus{
		MerchantOrderID: resp.OrderID,
		VendorStatus:    resp.OrderStatus,
		Amount:          rupeesToPaise(resp.OrderAmount),
		PaymentTime:     resp.PaymentTime,
		CustomerName:    resp.CustomerDetails.CustomerName,
		Email:           resp.CustomerDetails.CustomerEmail,
		Phone:           resp.CustomerDetails.CustomerPhone,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody interface{}) error {
	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", apiVersion)
	req.Header.Set("x-client-id", c.ClientID)
	req.Header.Set("x-client-secret", c.ClientSecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrOrderNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: cashfree returned %s: %s", domain.ErrGatewayUnavailable, resp.Status, raw)
	}

	return json.NewDecoder(resp.Body).Decode(respBody)
}

func rupeesToPaise(amount float64) int64 {
	return int64(amount*100 + 0.5)
}

func paiseToRupees(amount int64) float64 {
	return float64(amount) / 100
}
