package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"ventar/internal/events"
	"ventar/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ListByHost is the primary fetch contract: all of the host's events, newest
// first. A missing scoping column surfaces as events.ErrColumnMissing so the
// service can run the documented fallback.
func (d *DB) ListByHost(ctx context.Context, hostID string) ([]models.Event, error) {
	var rows []models.Event
	err := d.Bun.NewSelect().
		Model(&rows).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}

// ListAll is the schema-drift fallback: the same fetch without host scoping.
// It never references host_id, so it works against the drifted schema that
// made the scoped query fail.
func (d *DB) ListAll(ctx context.Context) ([]models.Event, error) {
	var rows []models.Event
	err := d.Bun.NewSelect().
		Model(&rows).
		Column("id", "name", "date", "capacity", "registrations", "status", "created_at").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}

func (d *DB) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &event, nil
}

func (d *DB) Insert(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// DeleteEvent removes the event scoped to its owner. Zero rows affected is a
// success: deleting an already-gone event is idempotent. A foreign-key
// violation surfaces as events.ErrHasRegistrations.
func (d *DB) DeleteEvent(ctx context.Context, id, hostID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Where("host_id = ?", hostID).
		Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// DeleteRegistrations is cascade phase 2: remove the dependents before the
// event itself.
func (d *DB) DeleteRegistrations(ctx context.Context, eventID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Registration)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// mapError translates driver errors into the package sentinels. Postgres is
// matched by SQLSTATE; sqlite (used by the test suite) by message.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42703": // undefined_column
			return fmt.Errorf("%w: %s", events.ErrColumnMissing, pqErr.Message)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", events.ErrHasRegistrations, pqErr.Message)
		case "42501": // insufficient_privilege
			return fmt.Errorf("%w: %s", events.ErrUnauthorized, pqErr.Message)
		}
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such column"):
		return fmt.Errorf("%w: %s", events.ErrColumnMissing, msg)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "constraint failed: FOREIGN KEY"):
		return fmt.Errorf("%w: %s", events.ErrHasRegistrations, msg)
	}
	return err
}
