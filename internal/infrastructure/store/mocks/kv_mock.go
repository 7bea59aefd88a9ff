package mocks

import (
	"context"
	"sync"
)

// MockKV is an in-memory KV that records calls for assertions
type MockKV struct {
	mu   sync.RWMutex
	data map[string]string

	GetCalls    []string
	SetCalls    []SetCall
	DeleteCalls []string

	GetErr    error
	SetErr    error
	DeleteErr error
}

// SetCall records parameters passed to Set
type SetCall struct {
	Key   string
	Value string
}

// NewMockKV creates a new MockKV
func NewMockKV() *MockKV {
	return &MockKV{data: make(map[string]string)}
}

func (m *MockKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MockKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: value})
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = value
	return nil
}

func (m *MockKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, key)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.data, key)
	return nil
}

// Seed stores a value directly without recording a call
func (m *MockKV) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Value returns what is stored under key without recording a call
func (m *MockKV) Value(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Reset clears stored data, recorded calls and injected errors
func (m *MockKV) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	m.GetCalls = nil
	m.SetCalls = nil
	m.DeleteCalls = nil
	m.GetErr = nil
	m.SetErr = nil
	m.DeleteErr = nil
}
