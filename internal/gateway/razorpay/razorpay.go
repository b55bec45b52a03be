package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coursedesk/payment-order-service/internal/domain"
)

// Razorpay signs the raw body only, hex-encoded; there is no timestamp header.
var statusEvents = map[string]domain.PaymentEvent{
	"captured":   domain.EventPaymentSuccess,
	"paid":       domain.EventPaymentSuccess,
	"failed":     domain.EventPaymentFailed,
	"created":    domain.EventPaymentDropped,
	"authorized": domain.EventPaymentDropped,
	"attempted":  domain.EventPaymentDropped,
}

type Client struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	HTTPClient    *http.Client
}

func NewClient(baseURL, keyID, keySecret, webhookSecret string) *Client {
	return &Client{
		BaseURL:       baseURL,
		KeyID:         keyID,
		KeySecret:     keySecret,
		WebhookSecret: webhookSecret,
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Name() string {
	return "razorpay"
}

func (c *Client) SignatureHeaders() (string, string) {
	return "X-Razorpay-Signature", ""
}

func (c *Client) VerifyWebhook(_, signature string, rawBody []byte) error {
	if signature == "" {
		return domain.ErrSignatureMissing
	}

	mac := hmac.New(sha256.New, []byte(c.WebhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrSignatureMismatch
	}

	return nil
}

type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				Amount    int64  `json:"amount"`
				Status    string `json:"status"`
				CreatedAt int64  `json:"created_at"`
				Notes     struct {
					MerchantOrderID string `json:"merchant_order_id"`
				} `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (c *Client) ParseWebhook(rawBody []byte) (*domain.WebhookNotification, error) {
	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("parsing razorpay webhook: %w", err)
	}
	entity := payload.Payload.Payment.Entity
	if entity.Notes.MerchantOrderID == "" {
		return nil, fmt.Errorf("razorpay webhook without merchant_order_id note")
	}

	return &domain.WebhookNotification{
		MerchantOrderID: entity.Notes.MerchantOrderID,
		VendorStatus:    entity.Status,
		Amount:          entity.Amount,
		PaymentTime:     time.Unix(entity.CreatedAt, 0),
	}, nil
}

func (c *Client) MapStatus(vendorStatus string) (domain.PaymentEvent, error) {
	event, ok := statusEvents[vendorStatus]
	if !ok {
		return "", domain.ErrUnknownEvent
	}
	return event, nil
}

type orderEntity struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	Receipt   string `json:"receipt"`
	CreatedAt int64  `json:"created_at"`
}

func (c *Client) CreateOrder(ctx context.Context, order *domain.Order, _ string) (*domain.PaymentSession, error) {
	reqBody := map[string]interface{}{
		"amount":   order.Amount,
		"currency": "INR",
		"receipt":  order.MerchantOrderID,
		"notes": map[string]string{
			"merchant_order_id": order.MerchantOrderID,
			"course_reference":  order.CourseReference,
		},
	}

	var resp orderEntity
	if err := c.do(ctx, http.MethodPost, "/v1/orders", reqBody, &resp); err != nil {
		return nil, err
	}

	return &domain.PaymentSession{SessionID: resp.ID}, nil
}

func (c *Client) FetchStatus(ctx context.Context, merchantOrderID string) (*domain.GatewayStatus, error) {
	var resp orderEntity
	if err := c.do(ctx, http.MethodGet, "/v1/orders/"+merchantOrderID, nil, &resp); err != nil {
		return nil, err
	}

	return &domain.GatewayStatus{
		MerchantOrderID: resp.Receipt,
		VendorStatus:    resp.Status,
		Amount:          resp.Amount,
		PaymentTime:     time.Unix(resp.CreatedAt, 0),
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
	req.SetBasicAuth(c.KeyID, c.KeySecret)

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
		return fmt.Errorf("%w: razorpay returned %s: %s", domain.ErrGatewayUnavailable, resp.Status, raw)
	}

	return json.NewDecoder(resp.Body).Decode(respBody)
}
