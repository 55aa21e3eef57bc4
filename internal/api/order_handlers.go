package api

import (
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/domain/order"
	"github.com/go-chi/chi/v5"
)

type OrderHandlers struct {
	orders order.Repository
}

func NewOrderHandlers(orders order.Repository) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

func (h *OrderHandlers) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess.Owner() == "" {
		respondError(w, http.StatusBadRequest, "no session")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), sess.Owner())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

type orderResponse struct {
	*order.Order
	Items []order.Item `json:"items"`
}

func (h *OrderHandlers) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// A shopper can only read their own orders; admins can read all.
	sess := middleware.GetSession(r.Context())
	if o.UserID != sess.Owner() && !isAdmin(r) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	items, err := h.orders.Items(r.Context(), orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse{Order: o, Items: items})
}

func isAdmin(r *http.Request) bool {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Role == "admin"
}
