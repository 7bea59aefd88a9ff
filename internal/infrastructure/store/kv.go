package store

import (
	"context"
	"errors"
)

// Keys persisted on behalf of a visitor
const (
	KeyCustomerSession = "sugrae_user"
	KeySelectedRegion  = "selectedRegion"
)

var ErrEmptyKey = errors.New("key is required")

// KV is the key/value storage that stands in for browser local storage
type KV interface {
	// Get returns the value stored under key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Scoped namespaces every key of kv with prefix
func Scoped(kv KV, prefix string) KV {
	return &scopedKV{kv: kv, prefix: prefix + ":"}
}

type scopedKV struct {
	kv     KV
	prefix string
}

func (s *scopedKV) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	return s.kv.Get(ctx, s.prefix+key)
}

func (s *scopedKV) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.kv.Set(ctx, s.prefix+key, value)
}

func (s *scopedKV) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.kv.Delete(ctx, s.prefix+key)
}
