package model

import (
	"time"

	"github.com/google/uuid"
)

// Visit is an append-only record of a user contact, written when the
// middleware first resolves or creates an identity for a request.
type Visit struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Path      string    `json:"path"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
