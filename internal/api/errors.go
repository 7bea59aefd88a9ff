package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/example/sugrae-storefront/internal/auth"
	"github.com/example/sugrae-storefront/internal/catalog"
	"github.com/example/sugrae-storefront/internal/checkout"
	"github.com/example/sugrae-storefront/internal/domain/cart"
	"github.com/example/sugrae-storefront/internal/domain/region"
	"github.com/example/sugrae-storefront/internal/gateway"
	"github.com/example/sugrae-storefront/internal/storefront"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// statusFor maps an error from the storefront packages to an HTTP status
func statusFor(err error) int {
	var (
		local    *gateway.LocalValidationError
		backend  *gateway.BackendValidationError
		notFound *catalog.NotFoundError
	)

	switch {
	case errors.As(err, &local),
		errors.Is(err, gateway.ErrInvalidInput),
		errors.Is(err, checkout.ErrInvalidInfo),
		errors.Is(err, region.ErrUnknownRegion),
		errors.Is(err, cart.ErrInvalidAttribute),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, gateway.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &notFound), errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrNotEditable),
		errors.Is(err, checkout.ErrAlreadyPlaced),
		errors.Is(err, checkout.ErrMissingVariant):
		return http.StatusConflict
	case errors.As(err, &backend):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gateway.ErrTransport), errors.Is(err, catalog.ErrEmptyCatalog):
		return http.StatusBadGateway
	case errors.Is(err, catalog.ErrNoBackend),
		errors.Is(err, storefront.ErrNoShopDomain),
		errors.Is(err, storefront.ErrNoNewsletter):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the text shown to the visitor. Backend messages and the
// status text of upstream HTTP failures are passed through as is. Failures
// that never got an HTTP answer and internal failures are not exposed.
func messageFor(err error, status int) string {
	var transport *gateway.TransportError
	if errors.As(err, &transport) {
		if transport.StatusCode == 0 || transport.Message == "" {
			return "service unavailable"
		}
		return transport.Message
	}
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// respondError writes err as a JSON error response
func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] Request failed (%d): %v", status, err)
	}

	body := ErrorResponse{Error: messageFor(err, status)}
	var (
		local      *gateway.LocalValidationError
		validation *checkout.ValidationError
	)
	switch {
	case errors.As(err, &local):
		body.Field = local.Field
	case errors.As(err, &validation):
		body.Missing = validation.Missing
	}
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

var errBadRequest = errors.New("malformed request body")

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
