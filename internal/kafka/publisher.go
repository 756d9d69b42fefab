package kafka

import (
	"context"
	"time"

	"ventar/internal/config"
	"ventar/internal/models"
)

// DomainPublisher maps domain events onto their topics. It satisfies the
// Publisher interfaces of the events and registrations services.
type DomainPublisher struct {
	Sender Sender
	Topics config.TopicConfig
}

func NewDomainPublisher(sender Sender, topics config.TopicConfig) *DomainPublisher {
	return &DomainPublisher{Sender: sender, Topics: topics}
}

type EventCreatedMessage struct {
	EventID   string    `json:"event_id"`
	HostID    string    `json:"host_id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

type EventDeletedMessage struct {
	EventID   string    `json:"event_id"`
	HostID    string    `json:"host_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type RegistrationCreatedMessage struct {
	RegistrationID string    `json:"registration_id"`
	EventID        string    `json:"event_id"`
	EventName      string    `json:"event_name"`
	HostID         string    `json:"host_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
}

func (p *DomainPublisher) EventCreated(event models.Event) error {
	return p.Sender.Publish(context.Background(), p.Topics.EventCreated, event.ID, EventCreatedMessage{
		EventID:   event.ID,
		HostID:    event.HostID,
		Name:      event.Name,
		Date:      event.Date,
		Status:    event.Status,
		Capacity:  event.Capacity,
		CreatedAt: event.CreatedAt,
	})
}

func (p *DomainPublisher) EventDeleted(eventID, hostID string) error {
	return p.Sender.Publish(context.Background(), p.Topics.EventDeleted, eventID, EventDeletedMessage{
		EventID:   eventID,
		HostID:    hostID,
		DeletedAt: time.Now().UTC(),
	})
}

func (p *DomainPublisher) RegistrationCreated(reg models.Registration, event models.Event) error {
	return p.Sender.Publish(context.Background(), p.Topics.RegistrationCreated, reg.EventID, RegistrationCreatedMessage{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		EventName:      event.Name,
		HostID:         event.HostID,
		Name:           reg.Name,
		Email:          reg.Email,
		CreatedAt:      reg.CreatedAt,
	})
}
