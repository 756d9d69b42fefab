package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ventar/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateHost(ctx context.Context, host models.Host) error {
	_, err := d.Bun.NewInsert().Model(&host).Exec(ctx)
	return err
}

// GetHostByEmail returns (nil, nil) when no host has that email.
func (d *DB) GetHostByEmail(ctx context.Context, email string) (*models.Host, error) {
	var host models.Host
	err := d.Bun.NewSelect().
		Model(&host).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &host, nil
}

func (d *DB) GetHostByID(ctx context.Context, id string) (*models.Host, error) {
	var host models.Host
	err := d.Bun.NewSelect().
		Model(&host).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &host, nil
}
