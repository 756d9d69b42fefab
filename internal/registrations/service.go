package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ventar/internal/events"
	"ventar/internal/logger"
	"ventar/internal/models"
	"ventar/internal/registrations/qr"
)

var (
	// ErrEventNotFound: the event was deleted between page load and
	// submission, or never existed.
	ErrEventNotFound = errors.New("event not found")

	// ErrNotFound: the confirmation references a registration that no
	// longer exists.
	ErrNotFound = errors.New("registration not found")

	// ErrWrongEvent: a confirmation code scanned at a different event's
	// check-in desk.
	ErrWrongEvent = errors.New("confirmation code belongs to a different event")
)

type DBLayer interface {
	Insert(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id string) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error)
	MarkCheckedIn(ctx context.Context, id string, at time.Time) error
}

// EventLookup resolves the event a registration targets. Backed by the
// events service; kept narrow so tests can stub it.
type EventLookup interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

type Publisher interface {
	RegistrationCreated(reg models.Registration, event models.Event) error
}

type Service struct {
	DB     DBLayer
	Events EventLookup
	Kafka  Publisher
	QR     *qr.Generator
	Logger *logger.Logger
}

func NewService(db DBLayer, events EventLookup, kafka Publisher, qrGen *qr.Generator, log *logger.Logger) *Service {
	return &Service{DB: db, Events: events, Kafka: kafka, QR: qrGen, Logger: log}
}

// LookupEvent loads the event a public registration page shows. A missing
// event is ErrEventNotFound, a message, not a redirect. Transient data-store
// failures pass through unchanged so they are not mistaken for a deletion.
func (s *Service) LookupEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.Events.GetEvent(ctx, eventID)
	if errors.Is(err, events.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
	}
	return event, nil
}

// Confirmation is what a successful registration hands the attendee.
type Confirmation struct {
	Registration *models.Registration `json:"registration"`
	EventName    string               `json:"event_name"`
	Code         string               `json:"code"`
	QRCode       []byte               `json:"qr_code"`
}

// Register inserts a registration for an anonymous attendee. The event is
// re-checked first: it may have been deleted since the form was loaded.
// The event's counter column is maintained by the data layer; no cached
// count is bumped here, the dashboard's next fetch is authoritative.
func (s *Service) Register(ctx context.Context, eventID, name, email string) (*Confirmation, error) {
	event, err := s.LookupEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	reg := &models.Registration{
		ID:        uuid.New().String(),
		EventID:   event.ID,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.DB.Insert(ctx, reg); err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}

	payload := qr.Payload{
		RegistrationID: reg.ID,
		EventID:        event.ID,
		Name:           reg.Name,
		Email:          reg.Email,
		IssuedAt:       reg.CreatedAt,
	}
	code, err := s.QR.Encrypt(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build confirmation code: %w", err)
	}
	png, err := s.QR.GenerateQR(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to render confirmation QR: %w", err)
	}

	if err := s.Kafka.RegistrationCreated(*reg, *event); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish registration created: %v", err))
	}

	return &Confirmation{
		Registration: reg,
		EventName:    event.Name,
		Code:         code,
		QRCode:       png,
	}, nil
}

// CheckIn validates a scanned confirmation code against the event being
// staffed and stamps the registration.
func (s *Service) CheckIn(ctx context.Context, eventID, encryptedCode string) (*models.Registration, error) {
	payload, err := s.QR.Decrypt(encryptedCode)
	if err != nil {
		return nil, err
	}
	if payload.EventID != eventID {
		return nil, ErrWrongEvent
	}

	reg, err := s.DB.GetByID(ctx, payload.RegistrationID)
	if err != nil {
		return nil, ErrNotFound
	}

	if err := s.DB.MarkCheckedIn(ctx, reg.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to check in registration %s: %w", reg.ID, err)
	}
	reg.CheckedIn = true
	reg.CheckedInTime = time.Now()
	return reg, nil
}

// Attendees lists an event's registrations for the manage view.
func (s *Service) Attendees(ctx context.Context, eventID string) ([]models.Registration, error) {
	regs, err := s.DB.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for event %s: %w", eventID, err)
	}
	return regs, nil
}
