package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event statuses as stored in the events table. Rows written before the
// status column existed come back empty and are normalized to StatusDraft.
const (
	StatusDraft     = "draft"
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Event is the raw row shape. Date is stored as the text the creation form
// submitted (normally YYYY-MM-DD); parsing happens at read time so a bad
// value degrades to a display marker instead of failing the whole fetch.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID            string    `bun:"id,pk" json:"id"`
	HostID        string    `bun:"host_id" json:"host_id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Date          string    `bun:"date" json:"date"`
	Capacity      int       `bun:"capacity" json:"capacity"`
	Registrations int       `bun:"registrations" json:"registrations"`
	Status        string    `bun:"status" json:"status"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
