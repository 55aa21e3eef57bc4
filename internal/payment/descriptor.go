package payment

import "fmt"

// MethodDescriptor is the shopper-facing description of how an order was
// paid. Gateway payloads are resolved into one of the two variants exactly
// once, at the gateway boundary; nothing deeper in the pipeline inspects
// raw provider objects.
type MethodDescriptor interface {
	// Ref is the value frozen into the order's payment_method_ref column.
	Ref() string
	methodDescriptor()
}

// Card describes a card-network payment.
type Card struct {
	Brand string `json:"brand"`
	Last4 string `json:"last4"`
}

func (c Card) Ref() string {
	return fmt.Sprintf("%s ending %s", c.Brand, c.Last4)
}

func (Card) methodDescriptor() {}

// Wallet describes a wallet-redirect payment.
type Wallet struct {
	Type string `json:"type"`
}

func (w Wallet) Ref() string {
	return w.Type
}

func (Wallet) methodDescriptor() {}
