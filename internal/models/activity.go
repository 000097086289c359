package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityEntry is a single immutable record in a user's activity log.
// Entries are append-only; Seq reflects insertion order.
type ActivityEntry struct {
	Seq    int64     `json:"-"`
	UserID uuid.UUID `json:"-"`
	Action string    `json:"action"`
	Time   time.Time `json:"time"`
}
