package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/shipping"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/pricing"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type State string

const (
	StateShipping   State = "shipping"
	StatePayment    State = "payment"
	StateReview     State = "review"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateAbandoned  State = "abandoned"
)

// Checkout is one shopper's in-progress checkout. Totals and line items are
// frozen at Start; the order commits with these values even if the cart or
// catalog changes underneath.
type Checkout struct {
	ID       string                 `json:"id"`
	Session  cart.Session           `json:"-"`
	State    State                  `json:"state"`
	Items    []cart.LineItem        `json:"items"`
	Totals   pricing.Totals         `json:"totals"`
	Shipping shipping.Info          `json:"shipping"`
	Method   payment.Method         `json:"method,omitempty"`
	Auth     *payment.Authorization `json:"authorization,omitempty"`
	OrderID  string                 `json:"order_id,omitempty"`
	Currency string                 `json:"currency"`
	StartedAt time.Time             `json:"started_at"`
}

// Machine sequences Shipping → Payment → Review → Processing and gates every
// transition. Checkouts are short-lived and single-writer, so they live in
// process memory; the durable state is the cart before commit and the order
// after.
type Machine struct {
	mu        sync.Mutex
	checkouts map[string]*Checkout
	inFlight  map[string]bool

	carts       *cart.Service
	verifier    *inventory.Verifier
	coordinator *payment.Coordinator
	addresses   shipping.AddressRepository
	pipeline    *Pipeline
	pricingCfg  pricing.Config
	currency    string
	logger      zerolog.Logger
}

func NewMachine(
	carts *cart.Service,
	verifier *inventory.Verifier,
	coordinator *payment.Coordinator,
	addresses shipping.AddressRepository,
	pipeline *Pipeline,
	pricingCfg pricing.Config,
	currency string,
	logger zerolog.Logger,
) *Machine {
	return &Machine{
		checkouts:   make(map[string]*Checkout),
		inFlight:    make(map[string]bool),
		carts:       carts,
		verifier:    verifier,
		coordinator: coordinator,
		addresses:   addresses,
		pipeline:    pipeline,
		pricingCfg:  pricingCfg,
		currency:    currency,
		logger:      logger.With().Str("component", "checkout").Logger(),
	}
}

// Start opens a checkout: loads the cart, verifies stock for every line,
// and freezes totals. Verification fails closed — no payment step runs if
// any line is short.
func (m *Machine) Start(ctx context.Context, sess cart.Session, discount int64) (*Checkout, error) {
	c, err := m.carts.Get(ctx, sess)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := m.verifier.Verify(ctx, c.Items); err != nil {
		return nil, err
	}

	co := &Checkout{
		ID:        uuid.New().String(),
		Session:   sess,
		State:     StateShipping,
		Items:     append([]cart.LineItem(nil), c.Items...),
		Totals:    pricing.Compute(c.Items, discount, m.pricingCfg),
		Currency:  m.currency,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.checkouts[co.ID] = co
	snap := co.snapshot()
	m.mu.Unlock()

	m.logger.Info().Str("checkout_id", co.ID).Int("lines", len(co.Items)).
		Int64("total", co.Totals.Total).Msg("checkout started")
	return snap, nil
}

// Get returns a point-in-time copy of a checkout, safe to read and encode
// without the machine's lock.
func (m *Machine) Get(checkoutID string) (*Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	co, ok := m.checkouts[checkoutID]
	if !ok {
		return nil, ErrCheckoutNotFound
	}
	return co.snapshot(), nil
}

// get returns the live checkout; callers mutate it only under m.mu.
func (m *Machine) get(checkoutID string) (*Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	co, ok := m.checkouts[checkoutID]
	if !ok {
		return nil, ErrCheckoutNotFound
	}
	return co, nil
}

// snapshot copies the checkout, cloning the mutable fields. Callers hold m.mu.
func (co *Checkout) snapshot() *Checkout {
	cp := *co
	cp.Items = append([]cart.LineItem(nil), co.Items...)
	if co.Auth != nil {
		auth := *co.Auth
		cp.Auth = &auth
	}
	return &cp
}

// SubmitShipping records shipping info and advances to Payment. Partial ad
// hoc data is rejected even when the shopper also has saved addresses.
func (m *Machine) SubmitShipping(ctx context.Context, checkoutID string, info shipping.Info) (*Checkout, error) {
	co, err := m.get(checkoutID)
	if err != nil {
		return nil, err
	}
	if err := m.guard(co, StateShipping); err != nil {
		return nil, err
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	co.Shipping = info
	co.State = StatePayment
	snap := co.snapshot()
	m.mu.Unlock()
	return snap, nil
}

// SubmitSavedAddress fills shipping from a saved address plus the session's
// profile-sourced name and phone, then validates like any other submission.
func (m *Machine) SubmitSavedAddress(ctx context.Context, checkoutID, addressID string) (*Checkout, error) {
	co, err := m.get(checkoutID)
	if err != nil {
		return nil, err
	}
	if !co.Session.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	addr, err := m.addresses.Get(ctx, co.Session.UserID, addressID)
	if err != nil {
		return nil, err
	}

	first, last := splitName(co.Session.Name)
	info := shipping.FromAddress(addr, first, last, co.Session.Email, co.Session.Phone)
	return m.SubmitShipping(ctx, checkoutID, info)
}

// SelectPayment picks a backend and creates the provisional authorization
// for the frozen total. The handle is retained on the checkout for Confirm.
func (m *Machine) SelectPayment(ctx context.Context, checkoutID string, method payment.Method) (*Checkout, error) {
	co, err := m.get(checkoutID)
	if err != nil {
		return nil, err
	}
	if err := m.guard(co, StatePayment); err != nil {
		return nil, err
	}

	auth, err := m.coordinator.Authorize(ctx, method, co.Totals.Total, co.Currency, payment.Metadata{
		CheckoutID: co.ID,
		UserID:     co.Session.Owner(),
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	co.Method = method
	co.Auth = auth
	co.State = StateReview
	snap := co.snapshot()
	m.mu.Unlock()
	return snap, nil
}

// PlaceOrder confirms the payment and, on success, drives the commit
// pipeline. A second call while the first is still processing is rejected —
// the pipeline is not safe to invoke twice for the same cart state.
func (m *Machine) PlaceOrder(ctx context.Context, checkoutID string, details payment.ConfirmDetails) (*order.Order, error) {
	co, err := m.get(checkoutID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.inFlight[checkoutID] {
		m.mu.Unlock()
		return nil, ErrCheckoutInFlight
	}
	if err := m.guardLocked(co, StateReview); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.inFlight[checkoutID] = true
	co.State = StateProcessing
	auth := co.Auth
	m.mu.Unlock()

	conf, err := m.coordinator.Confirm(ctx, auth, details)
	if err != nil {
		// Transport failure: outcome unknown at the gateway. Return to
		// Payment; the idempotency key makes a retry safe.
		m.setState(checkoutID, co, StatePayment, true)
		return nil, err
	}

	switch conf.Status {
	case payment.StatusSucceeded:
		// fall through to commit
	case payment.StatusRequiresAction:
		m.setState(checkoutID, co, StatePayment, true)
		return nil, &PaymentError{Status: conf.Status, Reason: "additional authentication required"}
	default: // Failed or Canceled: no order, no inventory side effects
		m.setState(checkoutID, co, StatePayment, true)
		return nil, &PaymentError{Status: conf.Status, Reason: conf.Reason}
	}

	o, err := m.pipeline.Commit(ctx, co, conf)
	if err != nil {
		// Money has moved but the order record is incomplete. The checkout
		// stays in Processing with the in-flight flag held: re-invoking the
		// pipeline could double-commit, so retry is not offered.
		return nil, err
	}

	m.mu.Lock()
	co.State = StateDone
	co.OrderID = o.ID
	delete(m.inFlight, checkoutID)
	m.mu.Unlock()

	m.logger.Info().Str("checkout_id", checkoutID).Str("order_id", o.ID).Msg("checkout complete")
	return o, nil
}

// Back navigates Payment→Shipping or Review→Payment without discarding any
// previously entered data.
func (m *Machine) Back(checkoutID string) (*Checkout, error) {
	co, err := m.get(checkoutID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch co.State {
	case StatePayment:
		co.State = StateShipping
	case StateReview:
		co.State = StatePayment
	default:
		return nil, ErrInvalidState
	}
	return co.snapshot(), nil
}

// Abandon marks the checkout abandoned. No server-side cleanup is needed
// before Processing: verification held no reservation. Once Processing has
// begun the pipeline runs to completion and abandonment is refused.
func (m *Machine) Abandon(checkoutID string) error {
	co, err := m.get(checkoutID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch co.State {
	case StateProcessing:
		return ErrCheckoutInFlight
	case StateDone:
		return ErrCheckoutComplete
	}
	co.State = StateAbandoned
	return nil
}

func (m *Machine) guard(co *Checkout, want State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guardLocked(co, want)
}

func (m *Machine) guardLocked(co *Checkout, want State) error {
	switch co.State {
	case want:
		return nil
	case StateDone:
		return ErrCheckoutComplete
	case StateAbandoned:
		return ErrCheckoutAbandoned
	default:
		return ErrInvalidState
	}
}

func (m *Machine) setState(checkoutID string, co *Checkout, state State, clearInFlight bool) {
	m.mu.Lock()
	co.State = state
	if clearInFlight {
		delete(m.inFlight, checkoutID)
	}
	m.mu.Unlock()
}

func splitName(full string) (first, last string) {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == ' ' {
			return full[:i], full[i+1:]
		}
	}
	return full, ""
}
