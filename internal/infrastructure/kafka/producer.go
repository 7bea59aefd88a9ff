package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/sugrae-storefront/internal/events"
	"github.com/segmentio/kafka-go"
)

// HeaderEventType lets consumers route without decoding the value
const HeaderEventType = "event-type"

// MessageWriter is the subset of *kafka.Writer the producer uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes event envelopes to one topic
type Producer struct {
	writer MessageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer}
}

// NewProducerWithWriter wraps an existing writer
func NewProducerWithWriter(w MessageWriter) *Producer {
	return &Producer{writer: w}
}

// Publish writes env keyed by its routing key
func (p *Producer) Publish(ctx context.Context, env events.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(env.Key),
		Value:   data,
		Time:    env.Timestamp,
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(env.Type)}},
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
