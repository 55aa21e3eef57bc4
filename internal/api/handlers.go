package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/catalog"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/shipping"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps a domain error onto an HTTP status. Every error
// path leaves the shopper with a clear next action, except the narrow
// post-payment persistence window, which gets a deliberately generic
// message: the detail goes to operators, not the shopper.
func respondDomainError(w http.ResponseWriter, err error) {
	var (
		validationErr  *shipping.ValidationError
		stockErr       *inventory.InsufficientStockError
		paymentErr     *checkout.PaymentError
		persistenceErr *checkout.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &stockErr):
		respondError(w, http.StatusConflict, stockErr.Error())
	case errors.As(err, &paymentErr):
		respondError(w, http.StatusPaymentRequired, paymentErr.Error())
	case errors.As(err, &persistenceErr):
		respondError(w, http.StatusInternalServerError, "we hit a problem processing your order; please contact support")
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrEmptySession),
		errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, shipping.ErrAddressNotFound),
		errors.Is(err, checkout.ErrCheckoutNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, checkout.ErrCheckoutInFlight),
		errors.Is(err, checkout.ErrCheckoutComplete),
		errors.Is(err, checkout.ErrCheckoutAbandoned),
		errors.Is(err, checkout.ErrInvalidState):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
