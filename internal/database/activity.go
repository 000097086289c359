package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mbrennan/toolhub/internal/models"
)

// ActivityRepository handles the append-only per-user activity log.
// Entries are never edited or removed.
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append adds one entry to the user's activity log
func (r *ActivityRepository) Append(ctx context.Context, userID uuid.UUID, action string, at time.Time) error {
	query := `INSERT INTO activities (user_id, action, time) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, userID, action, at); err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}

	return nil
}

// Recent returns the last limit entries, most recent first. A user with no
// log yields an empty slice, not an error.
func (r *ActivityRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.ActivityEntry, error) {
	query := `
		SELECT seq, user_id, action, time
		FROM activities
		WHERE user_id = $1
		ORDER BY seq DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	entries := []models.ActivityEntry{}
	for rows.Next() {
		var entry models.ActivityEntry
		if err := rows.Scan(&entry.Seq, &entry.UserID, &entry.Action, &entry.Time); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return entries, nil
}

// Count returns the total number of entries in the user's log
func (r *ActivityRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM activities WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}

	return count, nil
}
