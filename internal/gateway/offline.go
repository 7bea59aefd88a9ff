package gateway

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("commerce backend not configured")

// Offline stands in for the Storefront client when no shop is configured.
// Every call fails with a TransportError so callers keep their fallback paths.
type Offline struct{}

func (Offline) fail(op string, kind error) error {
	return &TransportError{Op: op, Message: ErrNotConfigured.Error(), Kind: kind, Err: ErrNotConfigured}
}

func (o Offline) FetchProducts(ctx context.Context, first int, country string) ([]CatalogEntry, error) {
	return nil, o.fail("products", ErrQuery)
}

func (o Offline) CustomerLogin(ctx context.Context, email, password string) (CustomerData, error) {
	return CustomerData{}, o.fail("customerAccessTokenCreate", ErrQuery)
}

func (o Offline) CreateCustomerAccount(ctx context.Context, in AccountInput) (Customer, error) {
	return Customer{}, o.fail("customerCreate", ErrAccountCreation)
}
