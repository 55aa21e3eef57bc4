package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/domain/cart"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNotTracked      = errors.New("no inventory record")
)

// Ref identifies the inventory row a line item draws from: the variant when
// one is set, else the base product.
type Ref struct {
	ProductID string
	VariantID string
}

// RefFor resolves the inventory reference for a cart line.
func RefFor(li cart.LineItem) Ref {
	return Ref{ProductID: li.ProductID, VariantID: li.VariantID}
}

// ID returns the inventory row key.
func (r Ref) ID() string {
	if r.VariantID != "" {
		return r.VariantID
	}
	return r.ProductID
}

// InsufficientStockError reports the first cart line whose requested
// quantity exceeds available stock. It is surfaced verbatim to the shopper.
type InsufficientStockError struct {
	Ref         Ref
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// Store reads and decrements inventory counts. Decrement must be a single
// conditional statement (stock = stock - qty WHERE stock >= qty) so a
// decrement that would go negative is rejected atomically, never clamped.
type Store interface {
	Stock(ctx context.Context, ref Ref) (int, error)
	Decrement(ctx context.Context, ref Ref, qty int) error
}

// IsInsufficient reports whether err is a stock-shortage rejection, either
// the verifier's typed error or the store's conditional-decrement failure.
func IsInsufficient(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

// Verifier checks a whole cart against live stock before checkout starts.
// The check is advisory, not a reservation: stock can still change before
// the commit-time decrement. It exists to fail fast with a clear message.
type Verifier struct {
	store Store
}

func NewVerifier(store Store) *Verifier {
	return &Verifier{store: store}
}

// Verify fails closed: the first insufficient line aborts the entire
// attempt before any payment step runs.
func (v *Verifier) Verify(ctx context.Context, items []cart.LineItem) error {
	for _, li := range items {
		ref := RefFor(li)
		available, err := v.store.Stock(ctx, ref)
		if err != nil {
			return fmt.Errorf("read stock for %s: %w", ref.ID(), err)
		}
		if li.Quantity > available {
			return &InsufficientStockError{
				Ref:         ref,
				ProductName: li.Snapshot.Name,
				Requested:   li.Quantity,
				Available:   available,
			}
		}
	}
	return nil
}
