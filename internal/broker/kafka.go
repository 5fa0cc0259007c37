// Package broker publishes order lifecycle events to Kafka. Publishing is
// best-effort: callers treat failures as log-and-continue.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"farmdirect-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const publishTimeout = 10 * time.Second

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: publishTimeout,
		ReadTimeout:  publishTimeout,
	}

	return &Producer{writer: writer}
}

// Publish writes one keyed JSON event. The timeout bounds how long a
// slow broker can hold up the caller.
func (p *Producer) Publish(ctx context.Context, key string, event interface{}) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	logger.FromCtx(ctx).Debug("event published",
		zap.String("key", key),
		zap.String("topic", p.writer.Topic),
	)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, key string, event interface{}) error { return nil }
