package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ventar/internal/logger"
	"ventar/internal/models"
)

// SchemaDriftWarning is shown when the fallback query served the collection.
// It is a visible banner, not silent tolerance of unscoped data.
const SchemaDriftWarning = "host_id column missing; showing all events"

type DBLayer interface {
	ListByHost(ctx context.Context, hostID string) ([]models.Event, error)
	ListAll(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Insert(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id, hostID string) error
	DeleteRegistrations(ctx context.Context, eventID string) error
}

// Publisher streams domain events to the activity feed. Publish failures are
// logged and dropped; they never fail the mutation that triggered them.
type Publisher interface {
	EventCreated(event models.Event) error
	EventDeleted(eventID, hostID string) error
}

type Service struct {
	DB     DBLayer
	Kafka  Publisher
	Logger *logger.Logger
}

func NewService(db DBLayer, kafka Publisher, log *logger.Logger) *Service {
	return &Service{DB: db, Kafka: kafka, Logger: log}
}

// FetchEvents runs the fetch contract with its degradation ladder:
// scoped query; on a missing scoping column, one unscoped retry plus a
// warning; authorization failures pass through for the session guard; zero
// rows is a valid empty collection.
func (s *Service) FetchEvents(ctx context.Context, hostID string) ([]View, string, error) {
	warning := ""
	rows, err := s.DB.ListByHost(ctx, hostID)
	if errors.Is(err, ErrColumnMissing) {
		s.Logger.Warn("EVENTS", fmt.Sprintf("scoped fetch failed (%v), falling back to unscoped query", err))
		warning = SchemaDriftWarning
		rows, err = s.DB.ListAll(ctx)
	}
	if err != nil {
		return nil, "", err
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, Normalize(row))
	}
	return views, warning, nil
}

// CreateInput is the event-creation wizard payload after validation.
type CreateInput struct {
	Name          string
	Date          string
	Capacity      int
	Registrations int
	Status        string
}

// CreateEvent inserts a new event owned by the host. The caller is expected
// to have run the form validator; the service assigns identity and
// timestamps. The dashboard does not insert the result locally; its next
// fetch is authoritative.
func (s *Service) CreateEvent(ctx context.Context, hostID string, in CreateInput) (*models.Event, error) {
	status := in.Status
	if status == "" {
		status = models.StatusUpcoming
	}

	event := &models.Event{
		ID:            uuid.New().String(),
		HostID:        hostID,
		Name:          in.Name,
		Date:          in.Date,
		Capacity:      in.Capacity,
		Registrations: in.Registrations,
		Status:        status,
		CreatedAt:     time.Now(),
	}
	if err := s.DB.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if err := s.Kafka.EventCreated(*event); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish event created: %v", err))
	}
	return event, nil
}

// DeleteEvent is the two-phase delete. Phase 1 deletes scoped to
// (id, host id); a dependency conflict without explicit cascade confirmation
// returns ErrHasRegistrations and deletes nothing. With cascade confirmed,
// dependents go first, then the event.
func (s *Service) DeleteEvent(ctx context.Context, id, hostID string, cascade bool) error {
	err := s.DB.DeleteEvent(ctx, id, hostID)
	if errors.Is(err, ErrHasRegistrations) {
		if !cascade {
			return ErrHasRegistrations
		}
		if err := s.DB.DeleteRegistrations(ctx, id); err != nil {
			return fmt.Errorf("failed to delete dependent registrations: %w", err)
		}
		err = s.DB.DeleteEvent(ctx, id, hostID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}

	if err := s.Kafka.EventDeleted(id, hostID); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish event deleted: %v", err))
	}
	return nil
}

// GetEvent returns a single raw event row.
func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetByID(ctx, id)
}
