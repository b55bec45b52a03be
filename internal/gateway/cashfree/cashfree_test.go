package cashfree

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coursedesk/payment-order-service/internal/domain"
)

const webhookSecret = "whsec_cashfree_test"

func sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, "client-id", "client-secret", webhookSecret)
}

func TestVerifyWebhook(t *testing.T) {
	client := testClient("")
	body := []byte(`{"data":{"order":{"order_id":"ORD-1"}}}`)
	timestamp := "1693216800"
	signature := sign(timestamp, body)

	t.Run("valid signature", func(t *testing.T) {
		if err := client.VerifyWebhook(timestamp, signature, body); err != nil {
			t.Errorf("VerifyWebhook: %v", err)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		for i := range body {
			tampered := append([]byte{}, body...)
			tampered[i] ^= 0x01
			if err := client.VerifyWebhook(timestamp, signature, tampered); !errors.Is(err, domain.ErrSignatureMismatch) {
				t.Fatalf("byte %d: error = %v, want ErrSignatureMismatch", i, err)
			}
		}
	})

	t.Run("wrong timestamp", func(t *testing.T) {
		if err := client.VerifyWebhook("1693216801", signature, body); !errors.Is(err, domain.ErrSignatureMismatch) {
			t.Errorf("error = %v, want ErrSignatureMismatch", err)
		}
	})

	t.Run("missing signature", func(t *testing.T) {
		if err := client.VerifyWebhook(timestamp, "", body); !errors.Is(err, domain.ErrSignatureMissing) {
			t.Errorf("error = %v, want ErrSignatureMissing", err)
		}
	})

	t.Run("missing timestamp", func(t *testing.T) {
		if err := client.VerifyWebhook("", signature, body); !errors.Is(err, domain.ErrSignatureMissing) {
			t.Errorf("error = %v, want ErrSignatureMissing", err)
		}
	})
}

func TestParseWebhook(t *testing.T) {
	client := testClient("")
	body := []byte(`{
		"type": "PAYMENT_SUCCESS_WEBHOOK",
		"data": {
			"order": {"order_id": "ORD-1", "order_amount": 100.00},
			"payment": {"payment_status": "SUCCESS", "payment_amount": 100.00, "payment_time": "2026-08-11T14:56:59+05:30"}
		}
	}`)

	notification, err := client.ParseWebhook(body)
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	if notification.MerchantOrderID != "ORD-1" {
		t.Errorf("merchant order id = %s, want ORD-1", notification.MerchantOrderID)
	}
	if notification.VendorStatus != "SUCCESS" {
		t.Errorf("vendor status = %s, want SUCCESS", notification.VendorStatus)
	}
	if notification.Amount != 10000 {
		t.Errorf("amount = %d paise, want 10000", notification.Amount)
	}

	if _, err := client.ParseWebhook([]byte(`{"data":{}}`)); err == nil {
		t.Error("payload without order_id must not parse")
	}
	if _, err := client.ParseWebhook([]byte(`not json`)); err == nil {
		t.Error("non-JSON payload must not parse")
	}
}

func TestMapStatus(t *testing.T) {
	client := testClient("")
	tests := []struct {
		vendorStatus string
		want         domain.PaymentEvent
	}{
		{"SUCCESS", domain.EventPaymentSuccess},
		{"PAID", domain.EventPaymentSuccess},
		{"FAILED", domain.EventPaymentFailed},
		{"EXPIRED", domain.EventPaymentFailed},
		{"USER_DROPPED", domain.EventPaymentDropped},
		{"ACTIVE", domain.EventPaymentDropped},
	}
	for _, tt := range tests {
		got, err := client.MapStatus(tt.vendorStatus)
		if err != nil {
			t.Errorf("MapStatus(%s): %v", tt.vendorStatus, err)
			continue
		}
		if got != tt.want {
			t.Errorf("MapStatus(%s) = %s, want %s", tt.vendorStatus, got, tt.want)
		}
	}

	if _, err := client.MapStatus("REFUNDED"); !errors.Is(err, domain.ErrUnknownEvent) {
		t.Errorf("MapStatus(REFUNDED) error = %v, want ErrUnknownEvent", err)
	}
}

func TestFetchStatus(t *testing.T) {
	t.Run("paid order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/pg/orders/ORD-1" {
				t.Errorf("path = %s, want /pg/orders/ORD-1", r.URL.Path)
			}
			if r.Header.Get("x-client-id") != "client-id" {
				t.Errorf("missing client id header")
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"order_id": "ORD-1",
				"order_status": "PAID",
				"order_amount": 100.00,
				"customer_details": {"customer_name": "Asha Rao", "customer_email": "asha@example.com", "customer_phone": "9999999999"}
			}`))
		}))
		defer server.Close()

		status, err := testClient(server.URL).FetchStatus(context.Background(), "ORD-1")
		if err != nil {
			t.Fatalf("FetchStatus: %v", err)
		}
		if status.VendorStatus != "PAID" {
			t.Errorf("vendor status = %s, want PAID", status.VendorStatus)
		}
		if status.Amount != 10000 {
			t.Errorf("amount = %d, want 10000", status.Amount)
		}
		if status.CustomerName != "Asha Rao" {
			t.Errorf("customer = %s, want Asha Rao", status.CustomerName)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := testClient(server.URL).FetchStatus(context.Background(), "ORD-404")
		if !errors.Is(err, domain.ErrOrderNotFound) {
			t.Errorf("error = %v, want ErrOrderNotFound", err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := testClient(server.URL).FetchStatus(context.Background(), "ORD-1")
		if !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Errorf("error = %v, want ErrGatewayUnavailable", err)
		}
	})

	t.Run("unreachable gateway", func(t *testing.T) {
		client := testClient("http://127.0.0.1:1")
		client.HTTPClient = &http.Client{Timeout: 200 * time.Millisecond}
		_, err := client.FetchStatus(context.Background(), "ORD-1")
		if !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Errorf("error = %v, want ErrGatewayUnavailable", err)
		}
	})
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pg/orders" {
			t.Errorf("%s %s, want POST /pg/orders", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"payment_session_id": "session_abc"}`))
	}))
	defer server.Close()

	session, err := testClient(server.URL).CreateOrder(context.Background(), &domain.Order{
		MerchantOrderID: "ORD-1",
		Amount:          10000,
	}, "https://example.com/return")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if session.SessionID != "session_abc" {
		t.Errorf("session id = %s, want session_abc", session.SessionID)
	}
}
