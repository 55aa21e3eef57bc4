package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/storefront/internal/events"
	"github.com/segmentio/kafka-go"
)

// Producer writes storefront events to the events topic.
type Producer struct {
	writer *kafka.Writer
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

// Publish sends one envelope keyed by the aggregate (order or checkout) id
// so events for the same checkout stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, key string, evt events.Envelope) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  evt.OccurredAt,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
