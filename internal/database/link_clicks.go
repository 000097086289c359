package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mbrennan/toolhub/internal/models"
)

// LinkClickRepository stores per-click records captured off the redirect path
type LinkClickRepository struct {
	db *DB
}

// NewLinkClickRepository creates a new link click repository
func NewLinkClickRepository(db *DB) *LinkClickRepository {
	return &LinkClickRepository{db: db}
}

// Insert records one click event
func (r *LinkClickRepository) Insert(ctx context.Context, click *models.LinkClick) error {
	query := `
		INSERT INTO link_clicks (id, link_id, clicked_at, referrer, user_agent)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		click.ID,
		click.LinkID,
		click.ClickedAt,
		click.Referrer,
		click.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert link click: %w", err)
	}

	return nil
}

// ListByLink returns up to limit click records for a link, newest first
func (r *LinkClickRepository) ListByLink(ctx context.Context, linkID uuid.UUID, limit int) ([]models.LinkClick, error) {
	query := `
		SELECT id, link_id, clicked_at, referrer, user_agent
		FROM link_clicks
		WHERE link_id = $1
		ORDER BY clicked_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query link clicks: %w", err)
	}
	defer rows.Close()

	clicks := []models.LinkClick{}
	for rows.Next() {
		var click models.LinkClick
		if err := rows.Scan(&click.ID, &click.LinkID, &click.ClickedAt, &click.Referrer, &click.UserAgent); err != nil {
			return nil, fmt.Errorf("failed to scan link click: %w", err)
		}
		clicks = append(clicks, click)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link clicks: %w", err)
	}

	return clicks, nil
}
