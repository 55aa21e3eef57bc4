package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/domain/shipping"
)

type AddressHandlers struct {
	addresses shipping.AddressRepository
}

func NewAddressHandlers(addresses shipping.AddressRepository) *AddressHandlers {
	return &AddressHandlers{addresses: addresses}
}

func (h *AddressHandlers) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	addresses, err := h.addresses.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, addresses)
}

// Save is the explicit "save this address" affordance; checkout never
// persists ad hoc shipping info on its own.
func (h *AddressHandlers) Save(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var a shipping.Address
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	a.UserID = sess.UserID

	if err := h.addresses.Save(r.Context(), &a); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}
