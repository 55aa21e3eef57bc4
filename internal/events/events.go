package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// TypeOrderConfirmed fires once per committed order; the notifier mails
	// the shopper a confirmation.
	TypeOrderConfirmed = "order.confirmed"

	// TypeInventoryRaceFailure fires when a per-line stock decrement is
	// rejected at commit time because concurrent demand exhausted inventory
	// after the advisory check. It is operator-facing only; the shopper
	// still gets the order.
	TypeInventoryRaceFailure = "inventory.race_failure"

	// TypePaymentCapturedUnrecorded fires when order persistence fails
	// after payment was captured. There is no automatic refund; an operator
	// reconciles the charge by hand.
	TypePaymentCapturedUnrecorded = "payment.captured_unrecorded"
)

// Envelope is the wire format on the events topic.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// New wraps a payload into an envelope.
func New(eventType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       data,
	}, nil
}

type OrderConfirmedItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type OrderConfirmed struct {
	OrderID  string               `json:"order_id"`
	UserID   string               `json:"user_id"`
	Email    string               `json:"email"`
	Total    int64                `json:"total"`
	Currency string               `json:"currency"`
	Items    []OrderConfirmedItem `json:"items"`
}

type InventoryRaceFailure struct {
	OrderID     string `json:"order_id"`
	ProductID   string `json:"product_id"`
	VariantID   string `json:"variant_id,omitempty"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
}

type PaymentCapturedUnrecorded struct {
	CheckoutID string `json:"checkout_id"`
	UserID     string `json:"user_id"`
	GatewayRef string `json:"gateway_ref"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	FailedStep string `json:"failed_step"`
	Reason     string `json:"reason"`
}
