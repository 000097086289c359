package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mbrennan/toolhub/internal/models"
)

// TodoRepository handles todo database operations
type TodoRepository struct {
	db *DB
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// Create creates a new todo
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	query := `
		INSERT INTO todos (id, user_id, title, is_marked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.IsMarked,
		now,
		now,
	).Scan(&todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// ListByUser returns all todos for a user in insertion order
func (r *TodoRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Todo, error) {
	query := `
		SELECT id, user_id, title, is_marked, created_at, updated_at
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		todo := &models.Todo{}
		err := rows.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.IsMarked, &todo.CreatedAt, &todo.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// Update updates a todo's title and marked state if it belongs to the user
func (r *TodoRepository) Update(ctx context.Context, userID, todoID uuid.UUID, title string, isMarked bool) (*models.Todo, error) {
	query := `
		UPDATE todos
		SET title = $3, is_marked = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, is_marked, created_at, updated_at
	`

	todo := &models.Todo{}
	err := r.db.QueryRowContext(ctx, query, todoID, userID, title, isMarked, time.Now()).Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.IsMarked,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("todo not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return todo, nil
}

// Delete removes a todo if it belongs to the user
func (r *TodoRepository) Delete(ctx context.Context, userID, todoID uuid.UUID) error {
	query := `DELETE FROM todos WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, todoID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("todo not found: %w", sql.ErrNoRows)
	}

	return nil
}
