package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTransport publishes mail commands for a separate sender service.
// Messages are keyed by recipient so one recipient's mail stays ordered.
type KafkaTransport struct {
	writer messageWriter
	topic  string
}

func NewKafkaTransport(brokers []string, topic string) *KafkaTransport {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	}
	return &KafkaTransport{writer: w, topic: topic}
}

func (t *KafkaTransport) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail command: %w", err)
	}
	if err := t.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.To),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(msg.Kind)},
		},
	}); err != nil {
		return fmt.Errorf("publish mail to %s: %w", t.topic, err)
	}
	return nil
}

func (t *KafkaTransport) Close() error {
	return t.writer.Close()
}
