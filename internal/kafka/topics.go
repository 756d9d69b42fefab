package kafka

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"ventar/internal/logger"
)

// EnsureTopicsExist creates the given topics if they don't already exist.
// A topic that fails to create does not stop the others.
func EnsureTopicsExist(brokers []string, topics []string, log *logger.Logger) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		err := controllerConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		if err != nil {
			if err.Error() == "kafka server: topic already exists" {
				log.Info("KAFKA", fmt.Sprintf("Topic %s already exists", topic))
				continue
			}
			log.Warn("KAFKA", fmt.Sprintf("Error creating topic %s: %v", topic, err))
		} else {
			log.Info("KAFKA", fmt.Sprintf("Created topic: %s", topic))
		}
	}

	// Give the cluster a moment to propagate the new topics.
	time.Sleep(1 * time.Second)
	return nil
}
