package payment

import (
	"context"
	"errors"
	"fmt"
)

type Method string

const (
	MethodCard   Method = "card"
	MethodWallet Method = "wallet"
)

type Status string

const (
	StatusSucceeded      Status = "succeeded"
	StatusFailed         Status = "failed"
	StatusRequiresAction Status = "requires_action"
	StatusCanceled       Status = "canceled"
)

var (
	ErrUnknownMethod = errors.New("unknown payment method")
	ErrNilAuth       = errors.New("authorization handle is required")
)

// Metadata is attached at authorize time. CheckoutID is the correlation
// token: presenting it twice must return the existing authorization at the
// gateway rather than create a duplicate. That contract is on the
// integration; the coordinator forwards it as an idempotency key.
type Metadata struct {
	CheckoutID string
	UserID     string
}

// Authorization is a provisional, not-yet-captured payment hold. It is
// opaque to the rest of the system except for its status and id, and must
// be retained by the caller to pass into Confirm.
type Authorization struct {
	ID         string `json:"id"`
	Method     Method `json:"method"`
	Status     Status `json:"status"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	GatewayRef string `json:"gateway_ref"`
}

// ConfirmDetails carries the per-method confirmation input: a tokenized
// card for the card backend, the out-of-band approval id for the wallet
// backend.
type ConfirmDetails struct {
	CardToken  string `json:"card_token,omitempty"`
	ApprovalID string `json:"approval_id,omitempty"`
}

// Confirmation is the terminal outcome of a confirm/capture call. A decline
// or a shopper cancellation is a status, not a Go error; errors are reserved
// for transport and gateway failures.
type Confirmation struct {
	Status     Status
	GatewayRef string
	Reason     string
	Descriptor MethodDescriptor
}

// Gateway is the contract both payment backends implement.
type Gateway interface {
	Authorize(ctx context.Context, amount int64, currency string, meta Metadata) (*Authorization, error)
	Confirm(ctx context.Context, auth *Authorization, details ConfirmDetails) (*Confirmation, error)
}

// Coordinator routes between the interchangeable backends. It is stateless
// per call.
type Coordinator struct {
	gateways map[Method]Gateway
}

func NewCoordinator(card, wallet Gateway) *Coordinator {
	return &Coordinator{gateways: map[Method]Gateway{
		MethodCard:   card,
		MethodWallet: wallet,
	}}
}

// Authorize creates a provisional authorization with the backend for the
// selected method.
func (c *Coordinator) Authorize(ctx context.Context, method Method, amount int64, currency string, meta Metadata) (*Authorization, error) {
	gw, ok := c.gateways[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	auth, err := gw.Authorize(ctx, amount, currency, meta)
	if err != nil {
		return nil, fmt.Errorf("authorize %s payment: %w", method, err)
	}
	auth.Method = method
	return auth, nil
}

// Confirm finalizes a previously created authorization.
func (c *Coordinator) Confirm(ctx context.Context, auth *Authorization, details ConfirmDetails) (*Confirmation, error) {
	if auth == nil {
		return nil, ErrNilAuth
	}
	gw, ok := c.gateways[auth.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, auth.Method)
	}
	conf, err := gw.Confirm(ctx, auth, details)
	if err != nil {
		return nil, fmt.Errorf("confirm %s payment: %w", auth.Method, err)
	}
	return conf, nil
}
