package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/catalog"
	"github.com/example/storefront/internal/pricing"
	"github.com/go-chi/chi/v5"
)

// CartHandlers exposes cart mutations. Every response carries the fresh
// authoritative cart plus recomputed totals so the client never keeps a
// total of its own.
type CartHandlers struct {
	carts      *cart.Service
	catalog    catalog.Repository
	pricingCfg pricing.Config
}

func NewCartHandlers(carts *cart.Service, cat catalog.Repository, pricingCfg pricing.Config) *CartHandlers {
	return &CartHandlers{carts: carts, catalog: cat, pricingCfg: pricingCfg}
}

type cartResponse struct {
	Items     []cart.LineItem `json:"items"`
	ItemCount int             `json:"item_count"`
	Totals    pricing.Totals  `json:"totals"`
}

func (h *CartHandlers) respondCart(w http.ResponseWriter, c *cart.Cart) {
	respondJSON(w, http.StatusOK, cartResponse{
		Items:     c.Items,
		ItemCount: c.ItemCount(),
		Totals:    pricing.Compute(c.Items, 0, h.pricingCfg),
	})
}

func (h *CartHandlers) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	c, err := h.carts.Get(r.Context(), sess)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, c)
}

func (h *CartHandlers) AddItem(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var req struct {
		ProductID string `json:"product_id"`
		Size      string `json:"size"`
		Color     string `json:"color"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	c, err := h.carts.Add(r.Context(), sess, p, req.Size, req.Color, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, c)
}

func (h *CartHandlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	itemID := chi.URLParam(r, "itemID")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), sess, itemID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, c)
}

func (h *CartHandlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	c, err := h.carts.Remove(r.Context(), sess, chi.URLParam(r, "itemID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, c)
}

func (h *CartHandlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	if err := h.carts.Clear(r.Context(), sess); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, &cart.Cart{Owner: sess.Owner()})
}

// MergeOnSignIn is called by the client right after authentication. The
// server cart replaces whatever the guest session held.
func (h *CartHandlers) MergeOnSignIn(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var req struct {
		GuestSessionID string `json:"guest_session_id"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	c, err := h.carts.MergeOnSignIn(r.Context(), req.GuestSessionID, sess.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, c)
}

// SignOut drops the guest cart so nothing carries over into the next
// session on this device.
func (h *CartHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	if err := h.carts.ClearOnSignOut(r.Context(), sess.GuestID); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
