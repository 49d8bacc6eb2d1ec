package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes events to a Kafka topic, keyed by decision ID so all
// events for one decision land on the same partition.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.DecisionID.String()),
		Value: payload,
		Time:  event.Timestamp,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
