package api

import (
	"net/http"

	"github.com/example/sugrae-storefront/internal/domain/customer"
)

func (h *Handlers) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.Checkout.Snapshot())
}

func (h *Handlers) UpdateCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var info customer.Info
	if err := decodeJSON(r, &info); err != nil {
		respondError(w, err)
		return
	}
	if err := s.Checkout.UpdateInfo(info); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Checkout.Snapshot())
}

func (h *Handlers) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Cart.OpenCheckout()
	respondJSON(w, http.StatusOK, s.Checkout.Snapshot())
}

func (h *Handlers) CloseCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Checkout.Close()
	respondJSON(w, http.StatusOK, s.Checkout.Snapshot())
}

// SubmitCheckout blocks for the simulated placement delay
func (h *Handlers) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	order, err := s.Checkout.Submit(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}
