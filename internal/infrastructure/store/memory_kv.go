package store

import (
	"context"
	"sync"
)

// MemoryKV is an in-memory KV, used for development and tests
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		data: make(map[string]string),
	}
}

// Get retrieves a value by key
func (kv *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}

	kv.mu.RLock()
	defer kv.mu.RUnlock()

	value, ok := kv.data[key]
	return value, ok, nil
}

// Set stores a value
func (kv *MemoryKV) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.data[key] = value
	return nil
}

// Delete removes a value
func (kv *MemoryKV) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	delete(kv.data, key)
	return nil
}

// Len returns the number of stored keys
func (kv *MemoryKV) Len() int {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	return len(kv.data)
}
