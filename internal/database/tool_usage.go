package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mbrennan/toolhub/internal/models"
)

// ToolUsageRepository handles per-user, per-tool usage counters
type ToolUsageRepository struct {
	db *DB
}

// NewToolUsageRepository creates a new tool usage repository
func NewToolUsageRepository(db *DB) *ToolUsageRepository {
	return &ToolUsageRepository{db: db}
}

// RecordUse records one invocation of a tool. The upsert makes the
// first-use/repeat-use branch a single atomic statement, so concurrent
// calls for the same (user, tool) pair can neither duplicate the entry
// nor drop an increment.
func (r *ToolUsageRepository) RecordUse(ctx context.Context, userID uuid.UUID, toolName string, at time.Time) error {
	query := `
		INSERT INTO tool_usage (user_id, tool_name, usage_count, last_used)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, tool_name) DO UPDATE
		SET usage_count = tool_usage.usage_count + 1,
		    last_used = EXCLUDED.last_used
	`

	if _, err := r.db.ExecContext(ctx, query, userID, toolName, at); err != nil {
		return fmt.Errorf("failed to record tool use: %w", err)
	}

	return nil
}

// Recent returns up to limit entries ordered by last use, newest first
func (r *ToolUsageRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.ToolUsageEntry, error) {
	query := `
		SELECT user_id, tool_name, usage_count, last_used
		FROM tool_usage
		WHERE user_id = $1
		ORDER BY last_used DESC
		LIMIT $2
	`

	return r.queryEntries(ctx, query, userID, limit)
}

// AllByCount returns all entries ordered by usage count, highest first
func (r *ToolUsageRepository) AllByCount(ctx context.Context, userID uuid.UUID) ([]models.ToolUsageEntry, error) {
	query := `
		SELECT user_id, tool_name, usage_count, last_used
		FROM tool_usage
		WHERE user_id = $1
		ORDER BY usage_count DESC
	`

	return r.queryEntries(ctx, query, userID)
}

func (r *ToolUsageRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.ToolUsageEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tool usage: %w", err)
	}
	defer rows.Close()

	entries := []models.ToolUsageEntry{}
	for rows.Next() {
		var entry models.ToolUsageEntry
		if err := rows.Scan(&entry.UserID, &entry.Name, &entry.UsageCount, &entry.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan tool usage: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tool usage: %w", err)
	}

	return entries, nil
}
