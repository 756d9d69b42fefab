package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Host struct {
	bun.BaseModel `bun:"table:hosts"`

	ID           string    `bun:"id,pk" json:"id"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	FullName     string    `bun:"full_name,notnull" json:"full_name"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
