package mocks

import (
	"context"
	"sync"

	"github.com/example/sugrae-storefront/internal/gateway"
)

// MockGateway returns canned customer responses and records calls
type MockGateway struct {
	mu sync.Mutex

	LoginData gateway.CustomerData
	LoginErr  error
	Customer  gateway.Customer
	CreateErr error

	LoginCalls  []LoginCall
	CreateCalls []gateway.AccountInput
}

// LoginCall records parameters passed to CustomerLogin
type LoginCall struct {
	Email    string
	Password string
}

// NewMockGateway creates a new MockGateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) CustomerLogin(ctx context.Context, email, password string) (gateway.CustomerData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LoginCalls = append(m.LoginCalls, LoginCall{Email: email, Password: password})
	if m.LoginErr != nil {
		return gateway.CustomerData{}, m.LoginErr
	}
	return m.LoginData, nil
}

func (m *MockGateway) CreateCustomerAccount(ctx context.Context, in gateway.AccountInput) (gateway.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, in)
	if m.CreateErr != nil {
		return gateway.Customer{}, m.CreateErr
	}
	return m.Customer, nil
}
