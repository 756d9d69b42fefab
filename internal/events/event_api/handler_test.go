package event_api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ventar/internal/auth"
	"ventar/internal/events"
	"ventar/internal/events/event_api"
	"ventar/internal/logger"
	"ventar/internal/models"
	"ventar/internal/utils"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) ListByHost(ctx context.Context, hostID string) ([]models.Event, error) {
	args := m.Called(hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) ListAll(ctx context.Context) ([]models.Event, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) GetByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) Insert(ctx context.Context, event *models.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteEvent(ctx context.Context, id, hostID string) error {
	args := m.Called(id, hostID)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteRegistrations(ctx context.Context, eventID string) error {
	args := m.Called(eventID)
	return args.Error(0)
}

type noopPublisher struct{}

func (noopPublisher) EventCreated(models.Event) error   { return nil }
func (noopPublisher) EventDeleted(string, string) error { return nil }

type memoryCache struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func (c *memoryCache) Put(ctx context.Context, tokenID string, session models.Session, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[tokenID] = session
	return nil
}

func (c *memoryCache) Get(ctx context.Context, tokenID string) (*models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session, ok := c.sessions[tokenID]
	if !ok || !session.Valid() {
		return nil, nil
	}
	return &session, nil
}

func (c *memoryCache) Delete(ctx context.Context, tokenID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, tokenID)
	return nil
}

// testServer wires a guarded chi router around the handler with one
// signed-in host.
func testServer(t *testing.T, db *MockDBLayer) (http.Handler, string) {
	t.Helper()

	log := logger.NewLogger()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	cache := &memoryCache{sessions: make(map[string]models.Session)}
	bc := auth.NewBroadcaster()
	authService := auth.NewService(nil, tokens, cache, bc, log, bcrypt.MinCost)

	token, claims, err := tokens.Generate("h1", "h1@example.com")
	require.NoError(t, err)
	require.NoError(t, cache.Put(context.Background(), claims.ID, models.Session{
		HostID: "h1", Email: "h1@example.com", ExpiresAt: claims.ExpiresAt.Time,
	}, time.Hour))

	service := events.NewService(db, noopPublisher{}, log)
	stores := events.NewManager(events.Deps{Fetcher: service, Deleter: service}, bc)
	t.Cleanup(stores.Close)

	handler := event_api.NewHandler(service, stores, log, "https://ventar.app")

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService))
		r.Get("/api/events", handler.List)
		r.Post("/api/events", handler.Create)
		r.Delete("/api/events/{eventID}", handler.Delete)
		r.Get("/api/events/{eventID}/share", handler.Share)
	})
	return r, token
}

func doJSON(t *testing.T, srv http.Handler, method, target, token, body string) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestListReturnsCollection(t *testing.T) {
	db := new(MockDBLayer)
	db.On("ListByHost", "h1").Return([]models.Event{
		{ID: "e1", HostID: "h1", Name: "Go Meetup", Date: "2026-04-01", Capacity: 10},
	}, nil)
	srv, token := testServer(t, db)

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/events", token, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Warning)
}

func TestListSurfacesDriftWarning(t *testing.T) {
	db := new(MockDBLayer)
	db.On("ListByHost", "h1").Return(nil, events.ErrColumnMissing)
	db.On("ListAll").Return([]models.Event{{ID: "e1", Name: "X", Capacity: 10}}, nil)
	srv, token := testServer(t, db)

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/events", token, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, resp.Warning, "host_id column missing")
}

func TestListWithoutTokenRedirects(t *testing.T) {
	srv, _ := testServer(t, new(MockDBLayer))

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/events", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.SignInPath, resp.Redirect)
}

func TestCreateValidationFailure(t *testing.T) {
	db := new(MockDBLayer)
	srv, token := testServer(t, db)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/events", token,
		`{"name": "", "date": "2020-01-01", "capacity": 0}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Event name is required", resp.Fields["name"])
	assert.NotEmpty(t, resp.Fields["date"])
	assert.NotEmpty(t, resp.Fields["capacity"])
	db.AssertNotCalled(t, "Insert")
}

func TestCreateAppendsWorkshopNumber(t *testing.T) {
	db := new(MockDBLayer)
	var inserted *models.Event
	db.On("Insert", mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(0).(*models.Event)
	}).Return(nil)
	srv, token := testServer(t, db)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/events", token,
		`{"name": "Go Workshop", "workshop_number": "3", "date": "2099-04-01", "capacity": 30}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, inserted)
	assert.Equal(t, "Go Workshop #3", inserted.Name)
}

func TestDeleteCascadeHandshake(t *testing.T) {
	db := new(MockDBLayer)
	db.On("ListByHost", "h1").Return([]models.Event{{ID: "e1", HostID: "h1", Name: "X", Capacity: 10}}, nil)
	db.On("DeleteEvent", "e1", "h1").Return(events.ErrHasRegistrations).Once()
	srv, token := testServer(t, db)

	// Prime the store.
	rec, _ := doJSON(t, srv, http.MethodGet, "/api/events", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// First attempt: conflict, cascade required.
	rec, resp := doJSON(t, srv, http.MethodDelete, "/api/events/e1", token, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["cascade_required"])

	// Confirmed: dependents first, then the event.
	db.On("DeleteEvent", "e1", "h1").Return(events.ErrHasRegistrations).Once()
	db.On("DeleteRegistrations", "e1").Return(nil)
	db.On("DeleteEvent", "e1", "h1").Return(nil).Once()

	rec, _ = doJSON(t, srv, http.MethodDelete, "/api/events/e1?cascade=true", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	db.AssertExpectations(t)
}

func TestShareLinkEndpoint(t *testing.T) {
	db := new(MockDBLayer)
	srv, token := testServer(t, db)

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/events/e1/share", token, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://ventar.app/register/e1", data["url"])
}
