package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go"

	"ventar/internal/logger"
)

// Message is a consumed record, decoupled from the kafka-go type so handlers
// don't import the driver.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

type Consumer struct {
	reader *kafka.Reader
	logger *logger.Logger
}

// NewConsumer subscribes one consumer group to all the given topics.
func NewConsumer(brokers []string, groupID string, topics []string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    10e3, // 10KB
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: log}
}

// Run consumes until ctx is cancelled or the reader is closed. Handler errors
// are logged, not fatal; the offset is committed either way.
func (c *Consumer) Run(ctx context.Context, handler func(Message) error) {
	c.logger.Info("KAFKA", "Consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.logger.Info("KAFKA", "Consumer stopped")
				return
			}
			c.logger.Error("KAFKA", fmt.Sprintf("Error reading message: %v", err))
			continue
		}

		if err := handler(Message{Topic: msg.Topic, Key: msg.Key, Value: msg.Value}); err != nil {
			c.logger.Error("KAFKA", fmt.Sprintf("Handler failed for topic %s: %v", msg.Topic, err))
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
