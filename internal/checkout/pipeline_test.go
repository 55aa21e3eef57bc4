package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/payment"
)

// ============================================
// Commit Sequencing Tests
// ============================================

func TestPipeline_Commit_RaceLossKeepsOrder(t *testing.T) {
	h := newHarness()
	h.stockCart(t, 2, 10)
	co := h.toReview(t)

	// Another shopper drains the stock between verification and commit.
	h.inventory.failDecrement["prod-1"] = true

	o, err := h.machine.PlaceOrder(context.Background(), co.ID, payment.ConfirmDetails{})

	// The charge is recorded regardless; the discrepancy goes to operators.
	require.NoError(t, err)
	require.Len(t, h.orders.orders, 1)
	assert.Equal(t, o.ID, h.orders.orders[0].ID)

	raced := h.publisher.ofType(events.TypeInventoryRaceFailure)
	require.Len(t, raced, 1)
	var payload events.InventoryRaceFailure
	require.NoError(t, json.Unmarshal(raced[0].Data, &payload))
	assert.Equal(t, o.ID, payload.OrderID)
	assert.Equal(t, "prod-1", payload.ProductID)
	assert.Equal(t, 2, payload.Requested)

	// The confirmation still goes out and the cart is still cleared.
	assert.Len(t, h.publisher.ofType(events.TypeOrderConfirmed), 1)
	c, _ := h.carts.Get(context.Background(), shopperSess)
	assert.Empty(t, c.Items)
}

func TestPipeline_Commit_ItemsFailureKeepsHeader(t *testing.T) {
	h := newHarness()
	h.stockCart(t, 1, 5)
	h.orders.createItemsErr = errors.New("db down")
	co := h.toReview(t)

	_, err := h.machine.PlaceOrder(context.Background(), co.ID, payment.ConfirmDetails{})

	var serr *PersistenceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "order_items", serr.Step)

	// The header is deliberately left in place for reconciliation.
	assert.Len(t, h.orders.orders, 1)
	assert.Empty(t, h.orders.items)

	alerts := h.publisher.ofType(events.TypePaymentCapturedUnrecorded)
	require.Len(t, alerts, 1)
	var payload events.PaymentCapturedUnrecorded
	require.NoError(t, json.Unmarshal(alerts[0].Data, &payload))
	assert.Equal(t, co.ID, payload.CheckoutID)
	assert.Equal(t, "order_items", payload.FailedStep)

	// No confirmation for an incomplete order; inventory and cart untouched.
	assert.Empty(t, h.publisher.ofType(events.TypeOrderConfirmed))
	assert.Equal(t, 5, h.inventory.stock["prod-1"])
	c, _ := h.carts.Get(context.Background(), shopperSess)
	assert.Len(t, c.Items, 1)
}

func TestPipeline_Commit_OrderFieldsFrozenFromCheckout(t *testing.T) {
	h := newHarness()
	h.stockCart(t, 2, 10)
	co := h.toReview(t)

	o, err := h.machine.PlaceOrder(context.Background(), co.ID, payment.ConfirmDetails{})
	require.NoError(t, err)

	assert.Equal(t, co.Totals.Subtotal, o.Subtotal)
	assert.Equal(t, co.Totals.Tax, o.Tax)
	assert.Equal(t, co.Totals.Shipping, o.Shipping)
	assert.Equal(t, co.Totals.Total, o.Total)
	assert.Equal(t, "user-1", o.UserID)

	// Billing defaults to the shipping address; the snapshot rides along on
	// every line so later catalog edits cannot rewrite history.
	assert.Equal(t, o.ShippingAddress, o.BillingAddress)
	assert.Equal(t, "12 Analytical St", o.ShippingAddress.Street)
	require.Len(t, h.orders.items, 1)
	it := h.orders.items[0]
	assert.Equal(t, "Hoodie", it.Snapshot.Name)
	assert.Equal(t, int64(4500), it.UnitPrice)
	assert.Equal(t, int64(9000), it.TotalPrice)
}

func TestPipeline_Commit_ConfirmationEventPayload(t *testing.T) {
	h := newHarness()
	h.stockCart(t, 2, 10)
	co := h.toReview(t)

	o, err := h.machine.PlaceOrder(context.Background(), co.ID, payment.ConfirmDetails{})
	require.NoError(t, err)

	confirmed := h.publisher.ofType(events.TypeOrderConfirmed)
	require.Len(t, confirmed, 1)
	var payload events.OrderConfirmed
	require.NoError(t, json.Unmarshal(confirmed[0].Data, &payload))

	assert.Equal(t, o.ID, payload.OrderID)
	assert.Equal(t, "ada@example.com", payload.Email)
	assert.Equal(t, o.Total, payload.Total)
	assert.Equal(t, "usd", payload.Currency)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "Hoodie", payload.Items[0].Name)
	assert.Equal(t, 2, payload.Items[0].Quantity)
}
