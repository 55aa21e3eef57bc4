package checkout

import (
	"context"
	"time"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/payment"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Publisher puts events on the bus for the notifier and operator tooling.
type Publisher interface {
	Publish(ctx context.Context, key string, evt events.Envelope) error
}

// Pipeline commits a confirmed payment into durable state, in strict
// sequence: order header, order items, per-line inventory decrement, cart
// clear. Once money has moved the pipeline biases toward recording the
// obligation over protecting inventory accuracy: a stock-count discrepancy
// is recoverable, a charged-but-unrecorded order is not.
type Pipeline struct {
	orders    order.Repository
	inventory inventory.Store
	carts     *cart.Service
	publisher Publisher
	logger    zerolog.Logger
}

func NewPipeline(orders order.Repository, inv inventory.Store, carts *cart.Service, publisher Publisher, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		orders:    orders,
		inventory: inv,
		carts:     carts,
		publisher: publisher,
		logger:    logger.With().Str("component", "pipeline").Logger(),
	}
}

// Commit runs the four steps. It is invoked exactly once per Succeeded
// confirmation; the state machine's in-flight guard enforces that.
func (p *Pipeline) Commit(ctx context.Context, co *Checkout, conf *payment.Confirmation) (*order.Order, error) {
	now := time.Now()
	addr := orderAddress(co)
	o := &order.Order{
		ID:               uuid.New().String(),
		UserID:           co.Session.Owner(),
		Status:           order.StatusConfirmed,
		PaymentStatus:    order.PaymentPaid,
		Subtotal:         co.Totals.Subtotal,
		Tax:              co.Totals.Tax,
		Shipping:         co.Totals.Shipping,
		Discount:         co.Totals.Discount,
		Total:            co.Totals.Total,
		ShippingAddress:  addr,
		BillingAddress:   addr,
		PaymentMethodRef: conf.Descriptor.Ref(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Step 1: order header. Failure here aborts the commit entirely; no
	// partial state is visible to the shopper, but the charge stands.
	if err := p.orders.CreateOrder(ctx, o); err != nil {
		p.alertUnrecordedCapture(ctx, co, conf, "order_header", err)
		return nil, &PersistenceError{Step: "order_header", Err: err}
	}

	// Step 2: order items, one per cart line, snapshots frozen.
	items := make([]order.Item, 0, len(co.Items))
	for _, li := range co.Items {
		unit := li.Snapshot.EffectiveUnitPrice()
		items = append(items, order.Item{
			OrderID:    o.ID,
			ProductID:  li.ProductID,
			VariantID:  li.VariantID,
			Snapshot:   li.Snapshot,
			Quantity:   li.Quantity,
			Size:       li.Size,
			Color:      li.Color,
			UnitPrice:  unit,
			TotalPrice: unit * int64(li.Quantity),
		})
	}
	if err := p.orders.CreateItems(ctx, items); err != nil {
		// The header exists with no items: recoverable inconsistency. The
		// order is deliberately not deleted.
		p.alertUnrecordedCapture(ctx, co, conf, "order_items", err)
		return nil, &PersistenceError{Step: "order_items", Err: err}
	}

	// Step 3: inventory decrement, per line, best-effort. A line losing the
	// race against another shopper is logged and alerted, never fatal.
	for _, li := range co.Items {
		ref := inventory.RefFor(li)
		if err := p.inventory.Decrement(ctx, ref, li.Quantity); err != nil {
			p.logger.Warn().Err(err).
				Str("order_id", o.ID).
				Str("inventory_ref", ref.ID()).
				Int("quantity", li.Quantity).
				Msg("inventory decrement skipped")
			p.publish(ctx, o.ID, events.TypeInventoryRaceFailure, events.InventoryRaceFailure{
				OrderID:     o.ID,
				ProductID:   li.ProductID,
				VariantID:   li.VariantID,
				ProductName: li.Snapshot.Name,
				Requested:   li.Quantity,
			})
		}
	}

	// Step 4: clear the cart. Runs whenever steps 1-2 succeeded.
	if err := p.carts.Clear(ctx, co.Session); err != nil {
		p.logger.Warn().Err(err).Str("order_id", o.ID).Msg("cart clear failed after commit")
	}

	confirmed := events.OrderConfirmed{
		OrderID:  o.ID,
		UserID:   o.UserID,
		Email:    co.Shipping.Email,
		Total:    o.Total,
		Currency: co.Currency,
	}
	for _, it := range items {
		confirmed.Items = append(confirmed.Items, events.OrderConfirmedItem{
			Name:      it.Snapshot.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	p.publish(ctx, o.ID, events.TypeOrderConfirmed, confirmed)

	return o, nil
}

func (p *Pipeline) alertUnrecordedCapture(ctx context.Context, co *Checkout, conf *payment.Confirmation, step string, cause error) {
	p.logger.Error().Err(cause).
		Str("checkout_id", co.ID).
		Str("gateway_ref", conf.GatewayRef).
		Str("step", step).
		Msg("payment captured but order persistence failed; manual reconciliation required")
	p.publish(ctx, co.ID, events.TypePaymentCapturedUnrecorded, events.PaymentCapturedUnrecorded{
		CheckoutID: co.ID,
		UserID:     co.Session.Owner(),
		GatewayRef: conf.GatewayRef,
		Amount:     co.Totals.Total,
		Currency:   co.Currency,
		FailedStep: step,
		Reason:     cause.Error(),
	})
}

func (p *Pipeline) publish(ctx context.Context, key, eventType string, payload any) {
	evt, err := events.New(eventType, payload)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}
	if err := p.publisher.Publish(ctx, key, evt); err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

func orderAddress(co *Checkout) order.Address {
	s := co.Shipping
	return order.Address{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Street:    s.Street,
		City:      s.City,
		State:     s.State,
		ZipCode:   s.ZipCode,
		Country:   s.Country,
		Phone:     s.Phone,
	}
}
