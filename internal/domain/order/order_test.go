package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository holds orders in a map; only the methods Transition needs
// do anything useful.
type fakeRepository struct {
	orders        map[string]*Order
	statusUpdates []Status
}

func newFakeRepository(orders ...*Order) *fakeRepository {
	r := &fakeRepository{orders: make(map[string]*Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeRepository) CreateOrder(_ context.Context, o *Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *fakeRepository) CreateItems(context.Context, []Item) error { return nil }

func (r *fakeRepository) Get(_ context.Context, orderID string) (*Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeRepository) Items(context.Context, string) ([]Item, error) { return nil, nil }

func (r *fakeRepository) ListByUser(context.Context, string) ([]*Order, error) { return nil, nil }

func (r *fakeRepository) UpdateStatus(_ context.Context, orderID string, status Status) error {
	r.orders[orderID].Status = status
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

// ============================================
// Transition Table Tests
// ============================================

func TestOrder_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusConfirmed, StatusProcessing, true},
		{StatusConfirmed, StatusRefunded, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusRefunded, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusRefunded, StatusConfirmed, false},
	}

	for _, tt := range tests {
		o := &Order{Status: tt.from}
		assert.Equal(t, tt.allowed, o.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestOrder_TransitionError(t *testing.T) {
	o := &Order{Status: StatusCancelled}
	assert.ErrorIs(t, o.TransitionError(StatusConfirmed), ErrOrderCancelled)

	o = &Order{Status: StatusShipped}
	assert.ErrorIs(t, o.TransitionError(StatusCancelled), ErrOrderShipped)

	o = &Order{Status: StatusDelivered}
	assert.ErrorIs(t, o.TransitionError(StatusCancelled), ErrOrderShipped)

	o = &Order{Status: StatusPending}
	assert.ErrorIs(t, o.TransitionError(StatusDelivered), ErrInvalidStatus)
}

// ============================================
// Transition Helper Tests
// ============================================

func TestTransition_Valid(t *testing.T) {
	repo := newFakeRepository(&Order{ID: "ord-1", Status: StatusConfirmed})

	err := Transition(context.Background(), repo, "ord-1", StatusProcessing)

	require.NoError(t, err)
	assert.Equal(t, []Status{StatusProcessing}, repo.statusUpdates)
	assert.Equal(t, StatusProcessing, repo.orders["ord-1"].Status)
}

func TestTransition_Invalid(t *testing.T) {
	repo := newFakeRepository(&Order{ID: "ord-1", Status: StatusShipped})

	err := Transition(context.Background(), repo, "ord-1", StatusCancelled)

	assert.ErrorIs(t, err, ErrOrderShipped)
	assert.Empty(t, repo.statusUpdates)
}

func TestTransition_NotFound(t *testing.T) {
	repo := newFakeRepository()

	err := Transition(context.Background(), repo, "missing", StatusConfirmed)

	assert.ErrorIs(t, err, ErrOrderNotFound)
}
