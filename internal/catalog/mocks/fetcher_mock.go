package mocks

import (
	"context"
	"sync"

	"github.com/example/sugrae-storefront/internal/gateway"
)

// MockFetcher serves canned catalog entries per country and records calls
type MockFetcher struct {
	mu sync.Mutex

	Entries map[string][]gateway.CatalogEntry
	Errs    map[string]error
	Calls   []FetchCall
}

// FetchCall records parameters passed to FetchProducts
type FetchCall struct {
	First   int
	Country string
}

// NewMockFetcher creates a new MockFetcher
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Entries: make(map[string][]gateway.CatalogEntry),
		Errs:    make(map[string]error),
	}
}

func (m *MockFetcher) FetchProducts(ctx context.Context, first int, country string) ([]gateway.CatalogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, FetchCall{First: first, Country: country})
	if err := m.Errs[country]; err != nil {
		return nil, err
	}
	return m.Entries[country], nil
}

// Set replaces the entries returned for country and clears its error
func (m *MockFetcher) Set(country string, entries []gateway.CatalogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[country] = entries
	delete(m.Errs, country)
}

// Fail makes every fetch for country return err
func (m *MockFetcher) Fail(country string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errs[country] = err
}

// CallCount returns how many fetches were made
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
