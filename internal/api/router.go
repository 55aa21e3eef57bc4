package api

import (
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterConfig wires the handler groups into one router.
type RouterConfig struct {
	Cart     *CartHandlers
	Checkout *CheckoutHandlers
	Orders   *OrderHandlers
	Address  *AddressHandlers

	Validator *auth.Validator
	Logger    zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Session(cfg.Validator))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cfg.Cart.GetCart)
		r.Delete("/", cfg.Cart.ClearCart)
		r.Post("/items", cfg.Cart.AddItem)
		r.Put("/items/{itemID}", cfg.Cart.UpdateItem)
		r.Delete("/items/{itemID}", cfg.Cart.RemoveItem)
		r.With(middleware.RequireAuth).Post("/merge", cfg.Cart.MergeOnSignIn)
	})
	r.Post("/signout", cfg.Cart.SignOut)

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", cfg.Checkout.Start)
		r.Route("/{checkoutID}", func(r chi.Router) {
			r.Get("/", cfg.Checkout.Get)
			r.Post("/shipping", cfg.Checkout.SubmitShipping)
			r.Post("/payment", cfg.Checkout.SelectPayment)
			r.Post("/confirm", cfg.Checkout.PlaceOrder)
			r.Post("/back", cfg.Checkout.Back)
			r.Post("/abandon", cfg.Checkout.Abandon)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", cfg.Orders.List)
		r.Get("/{orderID}", cfg.Orders.Get)
	})

	r.Route("/addresses", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", cfg.Address.List)
		r.Post("/", cfg.Address.Save)
	})

	return r
}
