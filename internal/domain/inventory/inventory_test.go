package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore serves stock levels from a map and records decrements.
type stubStore struct {
	stock      map[string]int
	stockCalls []string
}

func (s *stubStore) Stock(_ context.Context, ref Ref) (int, error) {
	s.stockCalls = append(s.stockCalls, ref.ID())
	n, ok := s.stock[ref.ID()]
	if !ok {
		return 0, ErrNotTracked
	}
	return n, nil
}

func (s *stubStore) Decrement(_ context.Context, ref Ref, qty int) error {
	s.stock[ref.ID()] -= qty
	return nil
}

func item(productID, variantID string, qty int) cart.LineItem {
	return cart.LineItem{
		ProductID: productID,
		VariantID: variantID,
		Quantity:  qty,
		Snapshot:  cart.ProductSnapshot{Name: "Item " + productID},
	}
}

// ============================================
// Ref Tests
// ============================================

func TestRef_VariantTakesPrecedence(t *testing.T) {
	assert.Equal(t, "var-1", RefFor(item("prod-1", "var-1", 1)).ID())
	assert.Equal(t, "prod-1", RefFor(item("prod-1", "", 1)).ID())
}

// ============================================
// Verify Tests
// ============================================

func TestVerifier_Verify_AllInStock(t *testing.T) {
	store := &stubStore{stock: map[string]int{"prod-1": 5, "var-2": 3}}
	v := NewVerifier(store)

	err := v.Verify(context.Background(), []cart.LineItem{
		item("prod-1", "", 5),
		item("prod-2", "var-2", 1),
	})

	assert.NoError(t, err)
}

func TestVerifier_Verify_FirstShortLineAborts(t *testing.T) {
	store := &stubStore{stock: map[string]int{"prod-1": 1, "prod-2": 10}}
	v := NewVerifier(store)

	err := v.Verify(context.Background(), []cart.LineItem{
		item("prod-1", "", 2),
		item("prod-2", "", 1),
	})

	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "prod-1", ise.Ref.ID())
	assert.Equal(t, 2, ise.Requested)
	assert.Equal(t, 1, ise.Available)
	// Fails closed: the second line is never checked.
	assert.Equal(t, []string{"prod-1"}, store.stockCalls)
}

func TestVerifier_Verify_UntrackedItem(t *testing.T) {
	store := &stubStore{stock: map[string]int{}}
	v := NewVerifier(store)

	err := v.Verify(context.Background(), []cart.LineItem{item("ghost", "", 1)})

	assert.ErrorIs(t, err, ErrNotTracked)
	assert.False(t, IsInsufficient(err))
}

func TestIsInsufficient(t *testing.T) {
	assert.True(t, IsInsufficient(&InsufficientStockError{Requested: 2, Available: 1}))
	assert.False(t, IsInsufficient(errors.New("boom")))
	assert.False(t, IsInsufficient(nil))
}

func TestInsufficientStockError_Message(t *testing.T) {
	err := &InsufficientStockError{ProductName: "Hoodie", Requested: 3, Available: 1}
	assert.Equal(t, `insufficient stock for "Hoodie": requested 3, available 1`, err.Error())
}
