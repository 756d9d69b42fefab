package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ventar/internal/logger"
)

// Sender is what the domain publishers write through. The real Producer and
// the mock used when no broker is reachable both satisfy it.
type Sender interface {
	Publish(ctx context.Context, topic, key string, payload any) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewProducer(brokers []string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer, logger: log}
}

// Publish JSON-encodes payload and streams it to the given topic.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	p.logger.Info("KAFKA", fmt.Sprintf("Publishing to [%s]: %s", topic, string(msgBytes)))

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: msgBytes,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// MockSender logs publishes instead of sending them. Used in mock mode and
// whenever Kafka is disabled so services can publish unconditionally.
type MockSender struct {
	logger *logger.Logger
}

func NewMockSender(log *logger.Logger) *MockSender {
	return &MockSender{logger: log}
}

func (m *MockSender) Publish(_ context.Context, topic, key string, payload any) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.logger.Info("KAFKA", fmt.Sprintf("[mock] would publish to [%s] key=%s: %s", topic, key, string(msgBytes)))
	return nil
}

func (m *MockSender) Close() error {
	return nil
}
