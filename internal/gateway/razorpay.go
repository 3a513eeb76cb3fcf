package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
	orders    *gobreaker.CircuitBreaker[*Order]
	payments  *gobreaker.CircuitBreaker[*Payment]
}

func NewRazorpayClient(baseURL, keyID, keySecret string) *RazorpayClient {
	settings := gobreaker.Settings{
		Name:    "razorpay",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &RazorpayClient{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: 10 * time.Second},
		orders:    gobreaker.NewCircuitBreaker[*Order](settings),
		payments:  gobreaker.NewCircuitBreaker[*Payment](settings),
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency string) (*Order, error) {
	order, err := c.orders.Execute(func() (*Order, error) {
		body, err := json.Marshal(createOrderRequest{
			Amount:   amount,
			Currency: currency,
			Receipt:  "rcpt_" + uuid.NewString(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal order request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build order request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(c.keyID, c.keySecret)

		var order Order
		if err := c.do(req, &order); err != nil {
			return nil, err
		}
		return &order, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return order, nil
}

func (c *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	payment, err := c.payments.Execute(func() (*Payment, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+paymentID, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build payment request: %w", err)
		}
		req.SetBasicAuth(c.keyID, c.keySecret)

		var payment Payment
		if err := c.do(req, &payment); err != nil {
			return nil, err
		}
		return &payment, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return payment, nil
}

func (c *RazorpayClient) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrPaymentNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: gateway returned %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("gateway rejected request with %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

// classify folds breaker states into the transient error kind so
// callers only ever see gateway error sentinels.
func classify(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
