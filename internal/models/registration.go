package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Registration struct {
	bun.BaseModel `bun:"table:registrations"`

	ID            string    `bun:"id,pk" json:"id"`
	EventID       string    `bun:"event_id,notnull" json:"event_id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,notnull" json:"email"`
	CheckedIn     bool      `bun:"checked_in" json:"checked_in"`
	CheckedInTime time.Time `bun:"checked_in_time,nullzero" json:"checked_in_time,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
