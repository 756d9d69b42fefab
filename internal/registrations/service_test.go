package registrations_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ventar/internal/events"
	"ventar/internal/logger"
	"ventar/internal/models"
	"ventar/internal/registrations"
	"ventar/internal/registrations/qr"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) Insert(ctx context.Context, reg *models.Registration) error {
	args := m.Called(reg)
	return args.Error(0)
}

func (m *MockDBLayer) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Registration), args.Error(1)
}

func (m *MockDBLayer) ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	args := m.Called(eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Registration), args.Error(1)
}

func (m *MockDBLayer) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	args := m.Called(id, at)
	return args.Error(0)
}

type MockEventLookup struct {
	mock.Mock
}

func (m *MockEventLookup) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) RegistrationCreated(reg models.Registration, event models.Event) error {
	args := m.Called(reg, event)
	return args.Error(0)
}

func newTestService(db *MockDBLayer, lookup *MockEventLookup, pub *MockPublisher) (*registrations.Service, *qr.Generator) {
	gen := qr.NewGenerator("test-secret")
	return registrations.NewService(db, lookup, pub, gen, logger.NewLogger()), gen
}

func testEvent() *models.Event {
	return &models.Event{ID: "e1", HostID: "h1", Name: "Go Meetup", Date: "2026-04-01", Capacity: 50}
}

func TestRegisterHappyPath(t *testing.T) {
	db := new(MockDBLayer)
	lookup := new(MockEventLookup)
	pub := new(MockPublisher)
	svc, gen := newTestService(db, lookup, pub)

	lookup.On("GetEvent", "e1").Return(testEvent(), nil)
	db.On("Insert", mock.Anything).Return(nil)
	pub.On("RegistrationCreated", mock.Anything, mock.Anything).Return(nil)

	conf, err := svc.Register(context.Background(), "e1", "Sam Lee", "sam@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Go Meetup", conf.EventName)
	assert.NotEmpty(t, conf.Registration.ID)
	assert.NotEmpty(t, conf.QRCode)

	// The confirmation code decrypts back to this registration.
	payload, err := gen.Decrypt(conf.Code)
	require.NoError(t, err)
	assert.Equal(t, conf.Registration.ID, payload.RegistrationID)
	assert.Equal(t, "e1", payload.EventID)
}

func TestRegisterEventDeletedMeanwhile(t *testing.T) {
	db := new(MockDBLayer)
	lookup := new(MockEventLookup)
	pub := new(MockPublisher)
	svc, _ := newTestService(db, lookup, pub)

	lookup.On("GetEvent", "e1").Return(nil, events.ErrNotFound)

	_, err := svc.Register(context.Background(), "e1", "Sam", "sam@example.com")
	assert.ErrorIs(t, err, registrations.ErrEventNotFound)
	db.AssertNotCalled(t, "Insert")
}

func TestRegisterPublishFailureIsNotFatal(t *testing.T) {
	db := new(MockDBLayer)
	lookup := new(MockEventLookup)
	pub := new(MockPublisher)
	svc, _ := newTestService(db, lookup, pub)

	lookup.On("GetEvent", "e1").Return(testEvent(), nil)
	db.On("Insert", mock.Anything).Return(nil)
	pub.On("RegistrationCreated", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	conf, err := svc.Register(context.Background(), "e1", "Sam", "sam@example.com")
	assert.NoError(t, err)
	assert.NotNil(t, conf)
}

func TestLookupEventNotFound(t *testing.T) {
	db := new(MockDBLayer)
	lookup := new(MockEventLookup)
	pub := new(MockPublisher)
	svc, _ := newTestService(db, lookup, pub)

	lookup.On("GetEvent", "gone").Return(nil, events.ErrNotFound)

	_, err := svc.LookupEvent(context.Background(), "gone")
	assert.ErrorIs(t, err, registrations.ErrEventNotFound)
}

func TestLookupEventTransientFailurePassesThrough(t *testing.T) {
	db := new(MockDBLayer)
	lookup := new(MockEventLookup)
	pub := new(MockPublisher)
	svc, _ := newTestService(db, lookup, pub)

	// A data-store outage is not a deletion; callers must answer with the
	// transient-error path, not a not-found message.
	lookup.On("GetEvent", "e1").Return(nil, errors.New("connection refused"))

	_, err := svc.LookupEvent(context.Background(), "e1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, registrations.ErrEventNotFound)
}

func TestCheckInHappyPath(t *testing.T) {
	db := new(MockDBLayer)
	lookup := new(MockEventLookup)
	pub := new(MockPublisher)
	svc, gen := newTestService(db, lookup, pub)

	code, err := gen.Encrypt(qr.Payload{RegistrationID: "r1", EventID: "e1", Name: "Sam", Email: "sam@example.com", IssuedAt: time.Now()})
	require.NoError(t, err)

	db.On("GetByID", "r1").Return(&models.Registration{ID: "r1", EventID: "e1", Name: "Sam"}, nil)
	db.On("MarkCheckedIn", "r1", mock.Anything).Return(nil)

	reg, err := svc.CheckIn(context.Background(), "e1", code)
	require.NoError(t, err)
	assert.True(t, reg.CheckedIn)
}

func TestCheckInWrongEvent(t *testing.T) {
	db := new(MockDBLayer)
	lookup := new(MockEventLookup)
	pub := new(MockPublisher)
	svc, gen := newTestService(db, lookup, pub)

	code, err := gen.Encrypt(qr.Payload{RegistrationID: "r1", EventID: "e1"})
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), "e2", code)
	assert.ErrorIs(t, err, registrations.ErrWrongEvent)
	db.AssertNotCalled(t, "MarkCheckedIn")
}

func TestCheckInInvalidCode(t *testing.T) {
	db := new(MockDBLayer)
	lookup := new(MockEventLookup)
	pub := new(MockPublisher)
	svc, _ := newTestService(db, lookup, pub)

	_, err := svc.CheckIn(context.Background(), "e1", "garbage")
	assert.ErrorIs(t, err, qr.ErrInvalidCode)
}

func TestCheckInRegistrationGone(t *testing.T) {
	db := new(MockDBLayer)
	lookup := new(MockEventLookup)
	pub := new(MockPublisher)
	svc, gen := newTestService(db, lookup, pub)

	code, err := gen.Encrypt(qr.Payload{RegistrationID: "r1", EventID: "e1"})
	require.NoError(t, err)

	db.On("GetByID", "r1").Return(nil, errors.New("no rows"))

	_, err = svc.CheckIn(context.Background(), "e1", code)
	assert.ErrorIs(t, err, registrations.ErrNotFound)
}

func TestAttendees(t *testing.T) {
	db := new(MockDBLayer)
	lookup := new(MockEventLookup)
	pub := new(MockPublisher)
	svc, _ := newTestService(db, lookup, pub)

	db.On("ListByEvent", "e1").Return([]models.Registration{{ID: "r1"}, {ID: "r2"}}, nil)

	regs, err := svc.Attendees(context.Background(), "e1")
	require.NoError(t, err)
	assert.Len(t, regs, 2)
}
