package api

import (
	"context"
	"net/http"

	"github.com/example/sugrae-storefront/internal/api/middleware"
	"github.com/example/sugrae-storefront/internal/catalog"
	"github.com/example/sugrae-storefront/internal/domain/cart"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/storefront"
	"github.com/go-chi/chi/v5"
)

// Sessions resolves the storefront session of a visitor
type Sessions interface {
	Session(ctx context.Context, visitorID, clientIP string) (*storefront.Session, error)
}

type Handlers struct {
	sessions Sessions
	catalog  *catalog.Store
}

func NewHandlers(sessions Sessions, catalog *catalog.Store) *Handlers {
	return &Handlers{
		sessions: sessions,
		catalog:  catalog,
	}
}

// session returns the caller's session, writing an error response on failure
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*storefront.Session, bool) {
	s, err := h.sessions.Session(r.Context(), middleware.GetVisitorID(r.Context()), middleware.ClientIP(r))
	if err != nil {
		respondError(w, err)
		return nil, false
	}
	return s, true
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"catalog": string(h.catalog.State()),
	})
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toCatalogResponse(h.catalog.Snapshot(), s.Region.Region()))
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.Product(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p, s.Region.Region()))
}

// RefreshCatalog refetches every market. A failed refresh keeps the previous
// catalog and reports the error. Prices are shown in the default region.
func (h *Handlers) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCatalogResponse(h.catalog.Snapshot(), region.Default))
}

// Region Handlers

func (h *Handlers) GetRegion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.Region.Snapshot())
}

func (h *Handlers) SetRegion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req regionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	next, err := region.Parse(req.Region)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.Region.SetRegion(r.Context(), next); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Region.Snapshot())
}

// Cart Handlers

func (h *Handlers) writeCart(w http.ResponseWriter, s *storefront.Session, status int) {
	respondJSON(w, status, toCartResponse(s.Cart.Snapshot(), s.Region.Region()))
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeCart(w, s, http.StatusOK)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.ProductID == "" {
		respondError(w, cart.ErrInvalidProduct)
		return
	}
	if _, err := cart.ParseAttribute(req.Attribute); err != nil {
		respondError(w, err)
		return
	}

	if err := s.AddToCart(req.ProductID); err != nil {
		respondError(w, err)
		return
	}
	if req.Attribute != "" {
		if err := s.Cart.UpdateAttribute(req.ProductID, req.Attribute); err != nil {
			respondError(w, err)
			return
		}
	}
	h.writeCart(w, s, http.StatusCreated)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if req.Attribute != nil {
		if err := s.Cart.UpdateAttribute(id, *req.Attribute); err != nil {
			respondError(w, err)
			return
		}
	}
	if req.Quantity != nil {
		if err := s.Cart.UpdateQuantity(id, *req.Quantity); err != nil {
			respondError(w, err)
			return
		}
	}
	h.writeCart(w, s, http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Cart.RemoveItem(chi.URLParam(r, "id"))
	h.writeCart(w, s, http.StatusOK)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Cart.Clear()
	h.writeCart(w, s, http.StatusOK)
}

// cartPanel returns a handler that applies fn to the cart panels
func (h *Handlers) cartPanel(fn func(*cart.Store)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.session(w, r)
		if !ok {
			return
		}
		fn(s.Cart)
		h.writeCart(w, s, http.StatusOK)
	}
}

func (h *Handlers) CartPermalink(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	url, err := s.Permalink()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Newsletter Handlers

func (h *Handlers) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req newsletterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	outcome, err := s.SubscribeNewsletter(r.Context(), req.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
}
