package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mbrennan/toolhub/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, password_hash, last_note, last_city,
	dark_mode, default_city, preferred_temperature_unit, preferred_length_unit, preferred_weight_unit,
	created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var lastNote uuid.NullUUID
	var lastCity sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&lastNote,
		&lastCity,
		&user.Preferences.DarkMode,
		&user.Preferences.DefaultCity,
		&user.Preferences.PreferredTemperatureUnit,
		&user.Preferences.PreferredLengthUnit,
		&user.Preferences.PreferredWeightUnit,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastNote.Valid {
		user.LastNote = &lastNote.UUID
	}
	if lastCity.Valid {
		user.LastCity = &lastCity.String
	}

	return user, nil
}

// Create creates a new user. Returns a unique-violation error when the
// username is already taken; use IsUniqueViolation to detect it.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, dark_mode, default_city,
			preferred_temperature_unit, preferred_length_unit, preferred_weight_unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Preferences.DarkMode,
		user.Preferences.DefaultCity,
		user.Preferences.PreferredTemperatureUnit,
		user.Preferences.PreferredLengthUnit,
		user.Preferences.PreferredWeightUnit,
		now,
		now,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// PreferencesUpdate carries the fields of a partial preferences update.
// Nil fields are left unchanged.
type PreferencesUpdate struct {
	DarkMode                 *bool
	DefaultCity              *string
	PreferredTemperatureUnit *string
	PreferredLengthUnit      *string
	PreferredWeightUnit      *string
}

// UpdatePreferences applies a partial preferences update in a single
// statement and returns the resulting preferences.
func (r *UserRepository) UpdatePreferences(ctx context.Context, userID uuid.UUID, update PreferencesUpdate) (*models.Preferences, error) {
	query := `
		UPDATE users
		SET dark_mode = COALESCE($2, dark_mode),
		    default_city = COALESCE($3, default_city),
		    preferred_temperature_unit = COALESCE($4, preferred_temperature_unit),
		    preferred_length_unit = COALESCE($5, preferred_length_unit),
		    preferred_weight_unit = COALESCE($6, preferred_weight_unit),
		    updated_at = $7
		WHERE id = $1
		RETURNING dark_mode, default_city, preferred_temperature_unit, preferred_length_unit, preferred_weight_unit
	`

	prefs := &models.Preferences{}
	err := r.db.QueryRowContext(ctx, query,
		userID,
		update.DarkMode,
		update.DefaultCity,
		update.PreferredTemperatureUnit,
		update.PreferredLengthUnit,
		update.PreferredWeightUnit,
		time.Now(),
	).Scan(
		&prefs.DarkMode,
		&prefs.DefaultCity,
		&prefs.PreferredTemperatureUnit,
		&prefs.PreferredLengthUnit,
		&prefs.PreferredWeightUnit,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	return prefs, nil
}

// SetLastNote updates the weak reference to the user's last viewed note
func (r *UserRepository) SetLastNote(ctx context.Context, userID, noteID uuid.UUID) error {
	query := `UPDATE users SET last_note = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, noteID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set last note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// SetLastCity updates the user's last searched weather city
func (r *UserRepository) SetLastCity(ctx context.Context, userID uuid.UUID, city string) error {
	query := `UPDATE users SET last_city = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, city, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set last city: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
