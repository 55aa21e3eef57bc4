package cart

import (
	"context"
	"errors"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrEmptySession    = errors.New("session has no owner")
)

// Repository persists one cart per owner. The authenticated implementation
// is backed by Postgres and is the source of truth; the guest implementation
// is backed by Redis with a TTL. Get on a missing cart returns an empty
// cart, not ErrCartNotFound, since every shopper implicitly has one.
type Repository interface {
	Get(ctx context.Context, owner string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, owner string) error
}
