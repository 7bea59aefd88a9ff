package api

import (
	"net/http"

	"github.com/example/sugrae-storefront/internal/identity"
)

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.Identity.Snapshot())
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if _, err := s.Identity.Login(r.Context(), req.Email, req.Password, req.Remember); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Identity.Snapshot())
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	_, err := s.Identity.Signup(r.Context(), identity.SignupInput{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Phone:            req.Phone,
		AcceptsMarketing: req.AcceptsMarketing,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.Identity.Snapshot())
}

// Logout always signs the visitor out. A failure to remove the persisted
// session is reported but the response still shows the signed-out state.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Identity.Logout(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Identity.Snapshot())
}
