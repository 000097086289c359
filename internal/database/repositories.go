package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mbrennan/toolhub/internal/models"
)

// The interfaces below describe the storage operations the HTTP layer
// depends on. The concrete repositories in this package satisfy them;
// handler tests substitute in-memory fakes.

// UserStore persists user accounts and their preferences.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, update PreferencesUpdate) (*models.Preferences, error)
	SetLastNote(ctx context.Context, userID, noteID uuid.UUID) error
	SetLastCity(ctx context.Context, userID uuid.UUID, city string) error
}

// ActivityStore persists the append-only per-user activity log.
type ActivityStore interface {
	Append(ctx context.Context, userID uuid.UUID, action string, at time.Time) error
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.ActivityEntry, error)
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ToolUsageStore persists per-user, per-tool usage counters.
type ToolUsageStore interface {
	RecordUse(ctx context.Context, userID uuid.UUID, toolName string, at time.Time) error
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.ToolUsageEntry, error)
	AllByCount(ctx context.Context, userID uuid.UUID) ([]models.ToolUsageEntry, error)
}

// LinkStore persists short links.
type LinkStore interface {
	Create(ctx context.Context, link *models.Link) error
	Resolve(ctx context.Context, shortURL string) (*models.Link, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Link, error)
	GetOwned(ctx context.Context, userID, linkID uuid.UUID) (*models.Link, error)
	Delete(ctx context.Context, userID uuid.UUID, shortURL string) error
}

// LinkClickStore persists individual click records.
type LinkClickStore interface {
	Insert(ctx context.Context, click *models.LinkClick) error
	ListByLink(ctx context.Context, linkID uuid.UUID, limit int) ([]models.LinkClick, error)
}

// NoteStore persists notes.
type NoteStore interface {
	Create(ctx context.Context, note *models.Note) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Note, error)
	Update(ctx context.Context, userID, noteID uuid.UUID, title, description string) (*models.Note, error)
	Delete(ctx context.Context, userID, noteID uuid.UUID) error
}

// TodoStore persists todos.
type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Todo, error)
	Update(ctx context.Context, userID, todoID uuid.UUID, title string, isMarked bool) (*models.Todo, error)
	Delete(ctx context.Context, userID, todoID uuid.UUID) error
}

var (
	_ UserStore      = (*UserRepository)(nil)
	_ ActivityStore  = (*ActivityRepository)(nil)
	_ ToolUsageStore = (*ToolUsageRepository)(nil)
	_ LinkStore      = (*LinkRepository)(nil)
	_ LinkClickStore = (*LinkClickRepository)(nil)
	_ NoteStore      = (*NoteRepository)(nil)
	_ TodoStore      = (*TodoRepository)(nil)
)
