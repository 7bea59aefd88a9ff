package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/sugrae-storefront/internal/events"
	"github.com/segmentio/kafka-go"
)

// EnvelopeHandler processes one decoded event
type EnvelopeHandler func(ctx context.Context, env events.Envelope) error

// MessageReader is the subset of *kafka.Reader the consumer uses
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader MessageReader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// NewConsumerWithReader wraps an existing reader
func NewConsumerWithReader(r MessageReader) *Consumer {
	return &Consumer{reader: r}
}

// Consume feeds every message to handler until ctx is done. Messages that do
// not decode as an envelope and handler errors are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handler EnvelopeHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[Kafka] Error reading message: %v", err)
				continue
			}

			var env events.Envelope
			if err := json.Unmarshal(msg.Value, &env); err != nil {
				log.Printf("[Kafka] Skipping undecodable message at offset %d: %v", msg.Offset, err)
				continue
			}

			if err := handler(ctx, env); err != nil {
				log.Printf("[Kafka] Error handling %s %s: %v", env.Type, env.ID, err)
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
