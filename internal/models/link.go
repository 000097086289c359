package models

import (
	"time"

	"github.com/google/uuid"
)

// Link maps a globally unique short URL to its destination.
// Clicks is monotonically non-decreasing; it is incremented exactly once
// per successful redirect resolution.
type Link struct {
	ID          uuid.UUID `json:"_id"`
	UserID      uuid.UUID `json:"-"`
	ShortURL    string    `json:"shortUrl"`
	OriginalURL string    `json:"originalUrl"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// LinkClick is one recorded resolution of a short link, captured
// asynchronously from the redirect path.
type LinkClick struct {
	ID        uuid.UUID `json:"id"`
	LinkID    uuid.UUID `json:"link_id"`
	ClickedAt time.Time `json:"clicked_at"`
	Referrer  string    `json:"referrer,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}
