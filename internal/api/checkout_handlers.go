package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/domain/shipping"
	"github.com/example/storefront/internal/payment"
	"github.com/go-chi/chi/v5"
)

// CheckoutHandlers drives the checkout state machine over HTTP. The client
// is expected to disable its "place order" control while a confirm request
// is outstanding; the machine's in-flight guard backs that up server-side.
type CheckoutHandlers struct {
	machine *checkout.Machine
}

func NewCheckoutHandlers(machine *checkout.Machine) *CheckoutHandlers {
	return &CheckoutHandlers{machine: machine}
}

func (h *CheckoutHandlers) Start(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var req struct {
		Discount int64 `json:"discount"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	co, err := h.machine.Start(r.Context(), sess, req.Discount)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, co)
}

func (h *CheckoutHandlers) Get(w http.ResponseWriter, r *http.Request) {
	co, err := h.machine.Get(chi.URLParam(r, "checkoutID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, co)
}

func (h *CheckoutHandlers) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	checkoutID := chi.URLParam(r, "checkoutID")

	var req struct {
		AddressID string         `json:"address_id,omitempty"`
		Info      *shipping.Info `json:"info,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		co  *checkout.Checkout
		err error
	)
	if req.AddressID != "" {
		co, err = h.machine.SubmitSavedAddress(r.Context(), checkoutID, req.AddressID)
	} else if req.Info != nil {
		co, err = h.machine.SubmitShipping(r.Context(), checkoutID, *req.Info)
	} else {
		respondError(w, http.StatusBadRequest, "either address_id or info is required")
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, co)
}

func (h *CheckoutHandlers) SelectPayment(w http.ResponseWriter, r *http.Request) {
	checkoutID := chi.URLParam(r, "checkoutID")

	var req struct {
		Method payment.Method `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	co, err := h.machine.SelectPayment(r.Context(), checkoutID, req.Method)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, co)
}

func (h *CheckoutHandlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	checkoutID := chi.URLParam(r, "checkoutID")

	var details payment.ConfirmDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.machine.PlaceOrder(r.Context(), checkoutID, details)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *CheckoutHandlers) Back(w http.ResponseWriter, r *http.Request) {
	co, err := h.machine.Back(chi.URLParam(r, "checkoutID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, co)
}

func (h *CheckoutHandlers) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.Abandon(chi.URLParam(r, "checkoutID")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
