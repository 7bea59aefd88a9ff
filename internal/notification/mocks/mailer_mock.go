package mocks

import (
	"sync"

	"github.com/example/sugrae-storefront/internal/email"
)

// MockMailer records confirmations instead of sending them
type MockMailer struct {
	mu   sync.Mutex
	Sent []email.Confirmation
	Err  error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) SendOrderConfirmation(c email.Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, c)
	return nil
}
