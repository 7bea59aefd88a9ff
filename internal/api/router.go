package api

import (
	"net/http"

	visitor "github.com/example/sugrae-storefront/internal/api/middleware"
	"github.com/example/sugrae-storefront/internal/domain/cart"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	Handlers     *Handlers
	SecureCookie bool
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP
	TrustProxy bool
	// AdminToken enables POST /catalog/refresh for bearers of this token
	AdminToken string
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	if cfg.AdminToken != "" {
		r.With(visitor.RequireAdmin(cfg.AdminToken)).Post("/catalog/refresh", h.RefreshCatalog)
	}

	r.Group(func(r chi.Router) {
		r.Use(visitor.Visitor(cfg.SecureCookie))

		// Catalog
		r.Get("/products", h.GetProducts)
		r.Get("/products/{id}", h.GetProduct)

		// Region
		r.Get("/region", h.GetRegion)
		r.Put("/region", h.SetRegion)

		// Cart
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddToCart)
			r.Patch("/items/{id}", h.UpdateCartItem)
			r.Delete("/items/{id}", h.RemoveFromCart)
			r.Post("/open", h.cartPanel((*cart.Store).OpenCart))
			r.Post("/close", h.cartPanel((*cart.Store).CloseCart))
			r.Post("/toggle", h.cartPanel((*cart.Store).ToggleCart))
			r.Get("/permalink", h.CartPermalink)
		})

		// Checkout
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", h.GetCheckout)
			r.Put("/", h.UpdateCheckout)
			r.Post("/open", h.OpenCheckout)
			r.Post("/close", h.CloseCheckout)
			r.Post("/submit", h.SubmitCheckout)
		})

		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", h.Me)
			r.Post("/login", h.Login)
			r.Post("/signup", h.Signup)
			r.Post("/logout", h.Logout)
		})

		r.Post("/newsletter", h.SubscribeNewsletter)
	})

	return r
}
