package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/internal/domain/cart"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrEmptyOrder     = errors.New("order must have at least one item")
	ErrInvalidStatus  = errors.New("invalid order status transition")
	ErrOrderShipped   = errors.New("cannot cancel an order that has shipped")
	ErrOrderCancelled = errors.New("order is already cancelled")
)

// validTransitions defines allowed status transitions. Monetary fields are
// frozen at creation; status is the only admin-mutable dimension.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled, StatusRefunded},
	StatusProcessing: {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped:    {StatusDelivered, StatusRefunded},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {}, // terminal
	StatusRefunded:   {}, // terminal
}

// Address is the postal address frozen into an order.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// Order is created exactly once per successful payment confirmation.
// Monetary fields are immutable after creation.
type Order struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	Status           Status        `json:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	Subtotal         int64         `json:"subtotal"`
	Tax              int64         `json:"tax"`
	Shipping         int64         `json:"shipping"`
	Discount         int64         `json:"discount"`
	Total            int64         `json:"total"`
	ShippingAddress  Address       `json:"shipping_address"`
	BillingAddress   Address       `json:"billing_address"`
	PaymentMethodRef string        `json:"payment_method_ref"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Item is one order line, frozen from a cart line at commit time.
type Item struct {
	OrderID    string               `json:"order_id"`
	ProductID  string               `json:"product_id"`
	VariantID  string               `json:"variant_id,omitempty"`
	Snapshot   cart.ProductSnapshot `json:"snapshot"`
	Quantity   int                  `json:"quantity"`
	Size       string               `json:"size,omitempty"`
	Color      string               `json:"color,omitempty"`
	UnitPrice  int64                `json:"unit_price"`
	TotalPrice int64                `json:"total_price"`
}

// CanTransitionTo checks if the order can move to the target status.
func (o *Order) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionError returns an appropriate error for an invalid transition.
func (o *Order) TransitionError(target Status) error {
	switch {
	case o.Status == StatusCancelled:
		return ErrOrderCancelled
	case (o.Status == StatusShipped || o.Status == StatusDelivered) && target == StatusCancelled:
		return ErrOrderShipped
	default:
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, o.Status, target)
	}
}

// Repository persists orders and their lines. Orders are never deleted,
// only status-transitioned.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	CreateItems(ctx context.Context, items []Item) error
	Get(ctx context.Context, orderID string) (*Order, error)
	Items(ctx context.Context, orderID string) ([]Item, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) error
}

// Transition applies a validated status change through the repository.
func Transition(ctx context.Context, repo Repository, orderID string, target Status) error {
	o, err := repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.CanTransitionTo(target) {
		return o.TransitionError(target)
	}
	return repo.UpdateStatus(ctx, orderID, target)
}
