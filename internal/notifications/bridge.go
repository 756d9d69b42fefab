package notifications

import (
	"encoding/json"
	"fmt"

	"ventar/internal/config"
	"ventar/internal/kafka"
	"ventar/internal/logger"
)

// Bridge decodes consumed Kafka messages into feed entries for the owning
// host. Unknown topics are skipped, not errors.
type Bridge struct {
	Feed   *Feed
	Topics config.TopicConfig
	Logger *logger.Logger
}

func NewBridge(feed *Feed, topics config.TopicConfig, log *logger.Logger) *Bridge {
	return &Bridge{Feed: feed, Topics: topics, Logger: log}
}

func (b *Bridge) Handle(msg kafka.Message) error {
	switch msg.Topic {
	case b.Topics.EventCreated:
		var m kafka.EventCreatedMessage
		if err := json.Unmarshal(msg.Value, &m); err != nil {
			return err
		}
		b.Feed.Add(m.HostID, "event_created", fmt.Sprintf("Event %q was created", m.Name))

	case b.Topics.EventDeleted:
		var m kafka.EventDeletedMessage
		if err := json.Unmarshal(msg.Value, &m); err != nil {
			return err
		}
		b.Feed.Add(m.HostID, "event_deleted", "An event was deleted")

	case b.Topics.RegistrationCreated:
		var m kafka.RegistrationCreatedMessage
		if err := json.Unmarshal(msg.Value, &m); err != nil {
			return err
		}
		// Registrations carry no host id on the wire; resolve through the
		// event's owner when one is attached.
		if m.HostID == "" {
			b.Logger.Debug("NOTIFY", fmt.Sprintf("registration %s has no host attribution, skipping", m.RegistrationID))
			return nil
		}
		b.Feed.Add(m.HostID, "registration_created", fmt.Sprintf("%s registered for %q", m.Name, m.EventName))
	}
	return nil
}
