package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"ventar/internal/models"
)

var ErrNotFound = errors.New("registration not found")

type DB struct {
	Bun *bun.DB
}

// Insert stores the registration and bumps the owning event's counter column
// in the same transaction, so the dashboard's next fetch sees both or neither.
func (d *DB) Insert(ctx context.Context, reg *models.Registration) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(reg).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("registrations = registrations + 1").
			Where("id = ?", reg.EventID).
			Exec(ctx)
		return err
	})
}

func (d *DB) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	var reg models.Registration
	err := d.Bun.NewSelect().
		Model(&reg).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (d *DB) ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := d.Bun.NewSelect().
		Model(&regs).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return regs, nil
}

// MarkCheckedIn stamps the registration as checked in.
func (d *DB) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Registration)(nil)).
		Set("checked_in = ?", true).
		Set("checked_in_time = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
