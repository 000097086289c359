package models

import (
	"time"

	"github.com/google/uuid"
)

// Todo is a checklist item owned by a single user
type Todo struct {
	ID        uuid.UUID `json:"_id"`
	UserID    uuid.UUID `json:"-"`
	Title     string    `json:"title"`
	IsMarked  bool      `json:"isMarked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
