package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mbrennan/toolhub/internal/models"
)

// LinkRepository handles short link database operations. The short_url
// unique constraint is global, not per-user: the short URL is the lookup
// key for anonymous redirect traffic.
type LinkRepository struct {
	db *DB
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create persists a new link with zero clicks. A unique-violation error is
// returned unwrapped enough for IsUniqueViolation so callers can regenerate
// the short code and retry.
func (r *LinkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (id, user_id, short_url, original_url, clicks, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		link.ID,
		link.UserID,
		link.ShortURL,
		link.OriginalURL,
		time.Now(),
	).Scan(&link.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// Resolve looks up a link by its full short URL, atomically increments the
// click counter and returns the destination. No increment happens when the
// short URL is unknown.
func (r *LinkRepository) Resolve(ctx context.Context, shortURL string) (*models.Link, error) {
	query := `
		UPDATE links
		SET clicks = clicks + 1
		WHERE short_url = $1
		RETURNING id, user_id, short_url, original_url, clicks, created_at
	`

	link := &models.Link{}
	err := r.db.QueryRowContext(ctx, query, shortURL).Scan(
		&link.ID,
		&link.UserID,
		&link.ShortURL,
		&link.OriginalURL,
		&link.Clicks,
		&link.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("link not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve link: %w", err)
	}

	return link, nil
}

// ListByUser returns all links owned by the user in insertion order
func (r *LinkRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Link, error) {
	query := `
		SELECT id, user_id, short_url, original_url, clicks, created_at
		FROM links
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	links := []*models.Link{}
	for rows.Next() {
		link := &models.Link{}
		err := rows.Scan(
			&link.ID,
			&link.UserID,
			&link.ShortURL,
			&link.OriginalURL,
			&link.Clicks,
			&link.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// GetOwned retrieves a link by ID only if it belongs to the given user
func (r *LinkRepository) GetOwned(ctx context.Context, userID, linkID uuid.UUID) (*models.Link, error) {
	query := `
		SELECT id, user_id, short_url, original_url, clicks, created_at
		FROM links
		WHERE id = $1 AND user_id = $2
	`

	link := &models.Link{}
	err := r.db.QueryRowContext(ctx, query, linkID, userID).Scan(
		&link.ID,
		&link.UserID,
		&link.ShortURL,
		&link.OriginalURL,
		&link.Clicks,
		&link.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("link not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

// Delete removes a link only if it belongs to the given user. Deleting a
// link owned by someone else reports zero rows, indistinguishable from a
// missing link.
func (r *LinkRepository) Delete(ctx context.Context, userID uuid.UUID, shortURL string) error {
	query := `DELETE FROM links WHERE user_id = $1 AND short_url = $2`

	result, err := r.db.ExecContext(ctx, query, userID, shortURL)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("link not found: %w", sql.ErrNoRows)
	}

	return nil
}
