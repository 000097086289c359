package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a titled free-form note owned by a single user
type Note struct {
	ID          uuid.UUID `json:"_id"`
	UserID      uuid.UUID `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
