package gateway

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable covers network failures, gateway 5xx responses and
	// an open circuit breaker. Transient, retryable.
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrPaymentNotFound means the gateway does not know the payment id.
	ErrPaymentNotFound = errors.New("payment not found at gateway")
)

// PaymentCaptured is the only status that proves funds were collected.
// PaymentFailed is the gateway's definitive verdict that no funds will
// arrive for this attempt.
const (
	PaymentCaptured = "captured"
	PaymentFailed   = "failed"
)

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Payment struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
}

func (p *Payment) Captured() bool {
	return p.Status == PaymentCaptured
}

func (p *Payment) Failed() bool {
	return p.Status == PaymentFailed
}

// Client is the call boundary to the external payment processor. Ids
// arriving from callbacks are attacker-controlled; FetchPayment is the
// only trustworthy source of capture status.
type Client interface {
	CreateOrder(ctx context.Context, amount int64, currency string) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}
