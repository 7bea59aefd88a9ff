// Package events defines the envelope storefront events travel in.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Topic carries every storefront event
const Topic = "storefront-events"

var ErrMissingType = errors.New("event type is required")

// Envelope wraps an event payload with its identity and routing key
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// New encodes payload into an envelope with a fresh id
func New(eventType, key string, payload any) (Envelope, error) {
	if eventType == "" {
		return Envelope{}, ErrMissingType
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling %s payload: %w", eventType, err)
	}
	return Envelope{
		ID:        uuid.New().String(),
		Type:      eventType,
		Key:       key,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into out
func (e Envelope) Decode(out any) error {
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return nil
}

// Publisher sends envelopes to subscribers outside the process
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// LogPublisher only logs envelopes. It is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, env Envelope) error {
	log.Printf("[Events] %s %s key=%s (%d bytes)", env.Type, env.ID, env.Key, len(env.Data))
	return nil
}
