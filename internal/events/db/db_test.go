package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ventar/internal/events"
	"ventar/internal/events/db"
	"ventar/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()

	_, err = bunDB.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	_, err = bunDB.NewCreateTable().Model((*models.Event)(nil)).Exec(ctx)
	require.NoError(t, err)

	_, err = bunDB.NewCreateTable().
		Model((*models.Registration)(nil)).
		ForeignKey(`("event_id") REFERENCES "events" ("id")`).
		Exec(ctx)
	require.NoError(t, err)

	t.Cleanup(func() { bunDB.Close() })
	return &db.DB{Bun: bunDB}, bunDB
}

func newEvent(hostID, name string, createdAt time.Time) *models.Event {
	return &models.Event{
		ID:        uuid.New().String(),
		HostID:    hostID,
		Name:      name,
		Date:      "2026-04-01",
		Capacity:  50,
		Status:    models.StatusUpcoming,
		CreatedAt: createdAt,
	}
}

func TestListByHostScopedAndOrdered(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := newEvent("h1", "Older", base)
	newer := newEvent("h1", "Newer", base.Add(time.Hour))
	foreign := newEvent("h2", "Not mine", base.Add(2*time.Hour))

	for _, e := range []*models.Event{older, newer, foreign} {
		require.NoError(t, store.Insert(ctx, e))
	}

	rows, err := store.ListByHost(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Newer", rows[0].Name)
	assert.Equal(t, "Older", rows[1].Name)
}

func TestListByHostEmptyIsValid(t *testing.T) {
	store, _ := setupTestDB(t)

	rows, err := store.ListByHost(context.Background(), "h1")
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGetByIDNotFound(t *testing.T) {
	store, _ := setupTestDB(t)

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, events.ErrNotFound)
}

func TestDeleteEventIsIdempotent(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	event := newEvent("h1", "X", time.Now())
	require.NoError(t, store.Insert(ctx, event))

	assert.NoError(t, store.DeleteEvent(ctx, event.ID, "h1"))
	// Deleting an already-gone event still succeeds.
	assert.NoError(t, store.DeleteEvent(ctx, event.ID, "h1"))
}

func TestDeleteEventScopedToOwner(t *testing.T) {
	store, _ := setupTestDB(t)
	ctx := context.Background()

	event := newEvent("h1", "X", time.Now())
	require.NoError(t, store.Insert(ctx, event))

	// A different host's delete matches zero rows and removes nothing.
	assert.NoError(t, store.DeleteEvent(ctx, event.ID, "h2"))
	got, err := store.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
}

func TestDeleteEventBlockedByRegistrations(t *testing.T) {
	store, bunDB := setupTestDB(t)
	ctx := context.Background()

	event := newEvent("h1", "X", time.Now())
	require.NoError(t, store.Insert(ctx, event))

	reg := &models.Registration{
		ID:        uuid.New().String(),
		EventID:   event.ID,
		Name:      "Sam",
		Email:     "sam@example.com",
		CreatedAt: time.Now(),
	}
	_, err := bunDB.NewInsert().Model(reg).Exec(ctx)
	require.NoError(t, err)

	err = store.DeleteEvent(ctx, event.ID, "h1")
	assert.ErrorIs(t, err, events.ErrHasRegistrations)

	// Cascade order: dependents first, then the event goes through.
	require.NoError(t, store.DeleteRegistrations(ctx, event.ID))
	assert.NoError(t, store.DeleteEvent(ctx, event.ID, "h1"))
}

func TestListByHostMissingColumnSurfacesDrift(t *testing.T) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	defer bunDB.Close()
	ctx := context.Background()

	// A pre-migration schema: the events table has no host_id column.
	_, err = bunDB.ExecContext(ctx, `CREATE TABLE events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date TEXT,
		capacity INTEGER,
		registrations INTEGER,
		status TEXT,
		created_at TIMESTAMP
	)`)
	require.NoError(t, err)
	_, err = bunDB.ExecContext(ctx,
		`INSERT INTO events (id, name, date, capacity, registrations, status, created_at) VALUES ('e1', 'Legacy', '2026-04-01', 10, 0, 'upcoming', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	store := &db.DB{Bun: bunDB}

	_, err = store.ListByHost(ctx, "h1")
	assert.ErrorIs(t, err, events.ErrColumnMissing)

	// The fallback works against the same drifted schema.
	rows, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Legacy", rows[0].Name)
}
