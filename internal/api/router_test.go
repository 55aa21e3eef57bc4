package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/catalog"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/shipping"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/pricing"
)

const testSecret = "test-secret-key-for-testing-purposes"

// ============================================
// Fakes
// ============================================

type memCartRepo struct {
	carts map[string]*cart.Cart
}

func (r *memCartRepo) Get(_ context.Context, owner string) (*cart.Cart, error) {
	if c, ok := r.carts[owner]; ok {
		copied := *c
		copied.Items = append([]cart.LineItem(nil), c.Items...)
		return &copied, nil
	}
	return &cart.Cart{Owner: owner}, nil
}

func (r *memCartRepo) Save(_ context.Context, c *cart.Cart) error {
	copied := *c
	copied.Items = append([]cart.LineItem(nil), c.Items...)
	r.carts[c.Owner] = &copied
	return nil
}

func (r *memCartRepo) Delete(_ context.Context, owner string) error {
	delete(r.carts, owner)
	return nil
}

type memCatalog struct {
	products map[string]*catalog.Product
}

func (c *memCatalog) Get(_ context.Context, productID string) (*catalog.Product, error) {
	p, ok := c.products[productID]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

type memInventory struct {
	stock map[string]int
}

func (s *memInventory) Stock(_ context.Context, ref inventory.Ref) (int, error) {
	return s.stock[ref.ID()], nil
}

func (s *memInventory) Decrement(_ context.Context, ref inventory.Ref, qty int) error {
	s.stock[ref.ID()] -= qty
	return nil
}

type scriptedGateway struct {
	status payment.Status
	reason string
}

func (g *scriptedGateway) Authorize(_ context.Context, amount int64, currency string, meta payment.Metadata) (*payment.Authorization, error) {
	return &payment.Authorization{ID: "auth-" + meta.CheckoutID, Amount: amount, Currency: currency}, nil
}

func (g *scriptedGateway) Confirm(_ context.Context, auth *payment.Authorization, _ payment.ConfirmDetails) (*payment.Confirmation, error) {
	return &payment.Confirmation{
		Status:     g.status,
		GatewayRef: "ref-" + auth.ID,
		Reason:     g.reason,
		Descriptor: payment.Card{Brand: "visa", Last4: "4242"},
	}, nil
}

type memOrderRepo struct {
	orders map[string]*order.Order
	items  map[string][]order.Item
}

func (r *memOrderRepo) CreateOrder(_ context.Context, o *order.Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) CreateItems(_ context.Context, items []order.Item) error {
	for _, it := range items {
		r.items[it.OrderID] = append(r.items[it.OrderID], it)
	}
	return nil
}

func (r *memOrderRepo) Get(_ context.Context, orderID string) (*order.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (r *memOrderRepo) Items(_ context.Context, orderID string) ([]order.Item, error) {
	return r.items[orderID], nil
}

func (r *memOrderRepo) ListByUser(_ context.Context, userID string) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, orderID string, status order.Status) error {
	r.orders[orderID].Status = status
	return nil
}

type memAddressRepo struct {
	addresses map[string]*shipping.Address
}

func (r *memAddressRepo) Get(_ context.Context, userID, addressID string) (*shipping.Address, error) {
	a, ok := r.addresses[addressID]
	if !ok || a.UserID != userID {
		return nil, shipping.ErrAddressNotFound
	}
	return a, nil
}

func (r *memAddressRepo) ListByUser(_ context.Context, userID string) ([]*shipping.Address, error) {
	var out []*shipping.Address
	for _, a := range r.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAddressRepo) Save(_ context.Context, a *shipping.Address) error {
	if a.ID == "" {
		a.ID = "addr-new"
	}
	r.addresses[a.ID] = a
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, events.Envelope) error { return nil }

// ============================================
// Harness
// ============================================

type apiHarness struct {
	handler   http.Handler
	gateway   *scriptedGateway
	inventory *memInventory
	orders    *memOrderRepo
}

func newAPIHarness() *apiHarness {
	logger := zerolog.Nop()
	cartSvc := cart.NewService(
		&memCartRepo{carts: map[string]*cart.Cart{}},
		&memCartRepo{carts: map[string]*cart.Cart{}},
		logger,
	)
	cat := &memCatalog{products: map[string]*catalog.Product{
		"prod-1": {ID: "prod-1", Name: "Hoodie", Price: 4500},
	}}
	inv := &memInventory{stock: map[string]int{"prod-1": 10}}
	gw := &scriptedGateway{status: payment.StatusSucceeded}
	orders := &memOrderRepo{orders: map[string]*order.Order{}, items: map[string][]order.Item{}}
	addrs := &memAddressRepo{addresses: map[string]*shipping.Address{}}

	cfg := pricing.Config{TaxRate: 0.12, FreeShippingThreshold: 10000, FlatShippingFee: 500}
	pipeline := checkout.NewPipeline(orders, inv, cartSvc, nopPublisher{}, logger)
	machine := checkout.NewMachine(cartSvc, inventory.NewVerifier(inv),
		payment.NewCoordinator(gw, gw), addrs, pipeline, cfg, "usd", logger)

	handler := NewRouter(RouterConfig{
		Cart:      NewCartHandlers(cartSvc, cat, cfg),
		Checkout:  NewCheckoutHandlers(machine),
		Orders:    NewOrderHandlers(orders),
		Address:   NewAddressHandlers(addrs),
		Validator: auth.NewValidator(testSecret),
		Logger:    logger,
	})

	return &apiHarness{handler: handler, gateway: gw, inventory: inv, orders: orders}
}

func (h *apiHarness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("X-Session-ID", "guest-abc")
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func shopperToken(t *testing.T) string {
	t.Helper()
	claims := auth.Claims{
		UserID: "user-1",
		Email:  "ada@example.com",
		Name:   "Ada Lovelace",
		Phone:  "+44 20 0000 0000",
		Role:   "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func shippingBody() map[string]any {
	return map[string]any{"info": map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"street":     "12 Analytical St",
		"city":       "London",
		"zip_code":   "EC1A",
		"country":    "GB",
		"phone":      "+44 20 0000 0000",
	}}
}

// ============================================
// Cart Endpoint Tests
// ============================================

func TestAPI_Cart_AddAndGet(t *testing.T) {
	h := newAPIHarness()

	rec := h.do(t, http.MethodPost, "/cart/items", "", map[string]any{
		"product_id": "prod-1", "size": "M", "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items     []cart.LineItem `json:"items"`
		ItemCount int             `json:"item_count"`
		Totals    pricing.Totals  `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.ItemCount)
	assert.Equal(t, int64(9000), resp.Totals.Subtotal)

	rec = h.do(t, http.MethodGet, "/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
}

func TestAPI_Cart_UnknownProduct(t *testing.T) {
	h := newAPIHarness()

	rec := h.do(t, http.MethodPost, "/cart/items", "", map[string]any{
		"product_id": "ghost", "quantity": 1,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Cart_InvalidQuantity(t *testing.T) {
	h := newAPIHarness()

	rec := h.do(t, http.MethodPost, "/cart/items", "", map[string]any{
		"product_id": "prod-1", "quantity": 0,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Cart_MergeRequiresAuth(t *testing.T) {
	h := newAPIHarness()

	rec := h.do(t, http.MethodPost, "/cart/merge", "", map[string]any{
		"guest_session_id": "guest-abc",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================
// Checkout Flow Tests
// ============================================

func TestAPI_Checkout_HappyPath(t *testing.T) {
	h := newAPIHarness()
	token := shopperToken(t)

	rec := h.do(t, http.MethodPost, "/cart/items", token, map[string]any{
		"product_id": "prod-1", "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/checkout", token, map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code)
	var co checkout.Checkout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &co))
	assert.Equal(t, checkout.StateShipping, co.State)

	rec = h.do(t, http.MethodPost, "/checkout/"+co.ID+"/shipping", token, shippingBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/checkout/"+co.ID+"/payment", token, map[string]string{"method": "card"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/checkout/"+co.ID+"/confirm", token, map[string]string{"card_token": "tok"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var o order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, order.StatusConfirmed, o.Status)
	assert.Equal(t, 8, h.inventory.stock["prod-1"])

	// The order is readable back through the orders API.
	rec = h.do(t, http.MethodGet, "/orders/"+o.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_Checkout_EmptyCart(t *testing.T) {
	h := newAPIHarness()

	rec := h.do(t, http.MethodPost, "/checkout", "", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Checkout_InsufficientStock(t *testing.T) {
	h := newAPIHarness()
	h.inventory.stock["prod-1"] = 1

	rec := h.do(t, http.MethodPost, "/cart/items", "", map[string]any{
		"product_id": "prod-1", "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/checkout", "", map[string]any{})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient stock")
}

func TestAPI_Checkout_DeclinedPayment(t *testing.T) {
	h := newAPIHarness()
	h.gateway.status = payment.StatusFailed
	h.gateway.reason = "card declined"
	token := shopperToken(t)

	rec := h.do(t, http.MethodPost, "/cart/items", token, map[string]any{
		"product_id": "prod-1", "quantity": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodPost, "/checkout", token, map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code)
	var co checkout.Checkout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &co))

	h.do(t, http.MethodPost, "/checkout/"+co.ID+"/shipping", token, shippingBody())
	h.do(t, http.MethodPost, "/checkout/"+co.ID+"/payment", token, map[string]string{"method": "card"})
	rec = h.do(t, http.MethodPost, "/checkout/"+co.ID+"/confirm", token, map[string]string{"card_token": "tok"})

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "card declined")
	assert.Empty(t, h.orders.orders)
}

func TestAPI_Checkout_UnknownID(t *testing.T) {
	h := newAPIHarness()

	rec := h.do(t, http.MethodGet, "/checkout/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================
// Order Ownership Tests
// ============================================

func TestAPI_Orders_ForbiddenForOtherShopper(t *testing.T) {
	h := newAPIHarness()
	h.orders.orders["ord-1"] = &order.Order{ID: "ord-1", UserID: "someone-else"}

	rec := h.do(t, http.MethodGet, "/orders/ord-1", shopperToken(t), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// ============================================
// Address Endpoint Tests
// ============================================

func TestAPI_Addresses_RequireAuth(t *testing.T) {
	h := newAPIHarness()

	rec := h.do(t, http.MethodGet, "/addresses", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_Addresses_SaveAndList(t *testing.T) {
	h := newAPIHarness()
	token := shopperToken(t)

	rec := h.do(t, http.MethodPost, "/addresses", token, map[string]any{
		"street": "12 Analytical St", "city": "London",
		"zip_code": "EC1A", "country": "GB",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodGet, "/addresses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var addrs []*shipping.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &addrs))
	require.Len(t, addrs, 1)
	assert.Equal(t, "user-1", addrs[0].UserID)
}
