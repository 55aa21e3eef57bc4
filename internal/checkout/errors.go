package checkout

import (
	"errors"
	"fmt"

	"github.com/example/storefront/internal/payment"
)

var (
	ErrCheckoutNotFound  = errors.New("checkout not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrCheckoutInFlight  = errors.New("checkout is already processing")
	ErrCheckoutComplete  = errors.New("checkout already completed")
	ErrCheckoutAbandoned = errors.New("checkout was abandoned")
	ErrInvalidState      = errors.New("operation not valid in current checkout state")
	ErrNotAuthenticated  = errors.New("saved addresses require a signed-in shopper")
)

// PaymentError is a declined or canceled confirmation. It returns the state
// machine to the Payment step; the shopper may retry.
type PaymentError struct {
	Status payment.Status
	Reason string
}

func (e *PaymentError) Error() string {
	if e.Status == payment.StatusCanceled {
		return "payment canceled: " + e.Reason
	}
	return "payment declined: " + e.Reason
}

// Canceled reports whether the shopper backed out rather than being declined.
func (e *PaymentError) Canceled() bool {
	return e.Status == payment.StatusCanceled
}

// PersistenceError is the narrow post-payment failure window: money has
// moved but the order record is incomplete. The shopper sees a generic
// processing error; operators get an alert event for manual reconciliation.
type PersistenceError struct {
	Step string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("order persistence failed at %s: %v", e.Step, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
