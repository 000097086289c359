package queue

import (
	"time"

	"github.com/google/uuid"
)

// ClickEvent is one short-link resolution published off the redirect
// path. Consumers persist it as a click record; the link's click counter
// is incremented synchronously and does not depend on this event.
type ClickEvent struct {
	ID        uuid.UUID `json:"id"`
	LinkID    uuid.UUID `json:"link_id"`
	ClickedAt time.Time `json:"clicked_at"`
	Referrer  string    `json:"referrer,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// NewClickEvent creates a click event for a resolved link.
func NewClickEvent(linkID uuid.UUID, referrer, userAgent string) *ClickEvent {
	return &ClickEvent{
		ID:        uuid.New(),
		LinkID:    linkID,
		ClickedAt: time.Now(),
		Referrer:  referrer,
		UserAgent: userAgent,
	}
}
