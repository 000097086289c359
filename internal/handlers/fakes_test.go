package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mbrennan/toolhub/internal/database"
	"github.com/mbrennan/toolhub/internal/models"
	"github.com/mbrennan/toolhub/internal/request"
)

// In-memory stand-ins for the Postgres repositories. They reproduce the
// semantics the handlers rely on: wrapped sql.ErrNoRows for misses and
// pq unique violations for duplicate keys.

func notFoundErr(what string) error {
	return fmt.Errorf("%s not found: %w", what, sql.ErrNoRows)
}

func uniqueViolation() error {
	return fmt.Errorf("insert failed: %w", &pq.Error{Code: "23505"})
}

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	for _, u := range s.users {
		if u.Username == user.Username {
			return uniqueViolation()
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, notFoundErr("user")
	}
	return user, nil
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, notFoundErr("user")
}

func (s *fakeUserStore) UpdatePreferences(ctx context.Context, userID uuid.UUID, update database.PreferencesUpdate) (*models.Preferences, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, notFoundErr("user")
	}
	if update.DarkMode != nil {
		user.Preferences.DarkMode = *update.DarkMode
	}
	if update.DefaultCity != nil {
		user.Preferences.DefaultCity = *update.DefaultCity
	}
	if update.PreferredTemperatureUnit != nil {
		user.Preferences.PreferredTemperatureUnit = *update.PreferredTemperatureUnit
	}
	if update.PreferredLengthUnit != nil {
		user.Preferences.PreferredLengthUnit = *update.PreferredLengthUnit
	}
	if update.PreferredWeightUnit != nil {
		user.Preferences.PreferredWeightUnit = *update.PreferredWeightUnit
	}
	return &user.Preferences, nil
}

func (s *fakeUserStore) SetLastNote(ctx context.Context, userID, noteID uuid.UUID) error {
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	id := noteID
	user.LastNote = &id
	return nil
}

func (s *fakeUserStore) SetLastCity(ctx context.Context, userID uuid.UUID, city string) error {
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	user.LastCity = &city
	return nil
}

type fakeActivityStore struct {
	entries []models.ActivityEntry
	nextSeq int64
}

func newFakeActivityStore() *fakeActivityStore {
	return &fakeActivityStore{}
}

func (s *fakeActivityStore) Append(ctx context.Context, userID uuid.UUID, action string, at time.Time) error {
	s.nextSeq++
	s.entries = append(s.entries, models.ActivityEntry{
		Seq:    s.nextSeq,
		UserID: userID,
		Action: action,
		Time:   at,
	})
	return nil
}

func (s *fakeActivityStore) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.ActivityEntry, error) {
	out := []models.ActivityEntry{}
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].UserID == userID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

func (s *fakeActivityStore) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, e := range s.entries {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *fakeActivityStore) actionsFor(userID uuid.UUID) []string {
	var out []string
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e.Action)
		}
	}
	return out
}

type usageKey struct {
	userID uuid.UUID
	tool   string
}

type fakeToolUsageStore struct {
	entries map[usageKey]*models.ToolUsageEntry
}

func newFakeToolUsageStore() *fakeToolUsageStore {
	return &fakeToolUsageStore{entries: make(map[usageKey]*models.ToolUsageEntry)}
}

func (s *fakeToolUsageStore) RecordUse(ctx context.Context, userID uuid.UUID, toolName string, at time.Time) error {
	key := usageKey{userID: userID, tool: toolName}
	if e, ok := s.entries[key]; ok {
		e.UsageCount++
		e.LastUsed = at
		return nil
	}
	s.entries[key] = &models.ToolUsageEntry{
		UserID:     userID,
		Name:       toolName,
		UsageCount: 1,
		LastUsed:   at,
	}
	return nil
}

func (s *fakeToolUsageStore) all(userID uuid.UUID) []models.ToolUsageEntry {
	out := []models.ToolUsageEntry{}
	for key, e := range s.entries {
		if key.userID == userID {
			out = append(out, *e)
		}
	}
	return out
}

func (s *fakeToolUsageStore) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.ToolUsageEntry, error) {
	out := s.all(userID)
	sort.Slice(out, func(i, j int) bool { return out[i].LastUsed.After(out[j].LastUsed) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeToolUsageStore) AllByCount(ctx context.Context, userID uuid.UUID) ([]models.ToolUsageEntry, error) {
	out := s.all(userID)
	sort.Slice(out, func(i, j int) bool { return out[i].UsageCount > out[j].UsageCount })
	return out, nil
}

type fakeLinkStore struct {
	links map[uuid.UUID]*models.Link
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: make(map[uuid.UUID]*models.Link)}
}

func (s *fakeLinkStore) Create(ctx context.Context, link *models.Link) error {
	for _, l := range s.links {
		if l.ShortURL == link.ShortURL {
			return uniqueViolation()
		}
	}
	link.CreatedAt = time.Now()
	s.links[link.ID] = link
	return nil
}

func (s *fakeLinkStore) Resolve(ctx context.Context, shortURL string) (*models.Link, error) {
	for _, l := range s.links {
		if l.ShortURL == shortURL {
			l.Clicks++
			return l, nil
		}
	}
	return nil, notFoundErr("link")
}

func (s *fakeLinkStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Link, error) {
	out := []*models.Link{}
	for _, l := range s.links {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeLinkStore) GetOwned(ctx context.Context, userID, linkID uuid.UUID) (*models.Link, error) {
	l, ok := s.links[linkID]
	if !ok || l.UserID != userID {
		return nil, notFoundErr("link")
	}
	return l, nil
}

func (s *fakeLinkStore) Delete(ctx context.Context, userID uuid.UUID, shortURL string) error {
	for id, l := range s.links {
		if l.UserID == userID && l.ShortURL == shortURL {
			delete(s.links, id)
			return nil
		}
	}
	return notFoundErr("link")
}

type fakeLinkClickStore struct {
	clicks []models.LinkClick
}

func newFakeLinkClickStore() *fakeLinkClickStore {
	return &fakeLinkClickStore{}
}

func (s *fakeLinkClickStore) Insert(ctx context.Context, click *models.LinkClick) error {
	s.clicks = append(s.clicks, *click)
	return nil
}

func (s *fakeLinkClickStore) ListByLink(ctx context.Context, linkID uuid.UUID, limit int) ([]models.LinkClick, error) {
	out := []models.LinkClick{}
	for i := len(s.clicks) - 1; i >= 0 && len(out) < limit; i-- {
		if s.clicks[i].LinkID == linkID {
			out = append(out, s.clicks[i])
		}
	}
	return out, nil
}

type fakeNoteStore struct {
	notes map[uuid.UUID]*models.Note
}

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{notes: make(map[uuid.UUID]*models.Note)}
}

func (s *fakeNoteStore) Create(ctx context.Context, note *models.Note) error {
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now
	s.notes[note.ID] = note
	return nil
}

func (s *fakeNoteStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Note, error) {
	out := []*models.Note{}
	for _, n := range s.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeNoteStore) Update(ctx context.Context, userID, noteID uuid.UUID, title, description string) (*models.Note, error) {
	n, ok := s.notes[noteID]
	if !ok || n.UserID != userID {
		return nil, notFoundErr("note")
	}
	n.Title = title
	n.Description = description
	n.UpdatedAt = time.Now()
	return n, nil
}

func (s *fakeNoteStore) Delete(ctx context.Context, userID, noteID uuid.UUID) error {
	n, ok := s.notes[noteID]
	if !ok || n.UserID != userID {
		return notFoundErr("note")
	}
	delete(s.notes, noteID)
	return nil
}

type fakeTodoStore struct {
	todos map[uuid.UUID]*models.Todo
}

func newFakeTodoStore() *fakeTodoStore {
	return &fakeTodoStore{todos: make(map[uuid.UUID]*models.Todo)}
}

func (s *fakeTodoStore) Create(ctx context.Context, todo *models.Todo) error {
	now := time.Now()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	s.todos[todo.ID] = todo
	return nil
}

func (s *fakeTodoStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Todo, error) {
	out := []*models.Todo{}
	for _, t := range s.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeTodoStore) Update(ctx context.Context, userID, todoID uuid.UUID, title string, isMarked bool) (*models.Todo, error) {
	t, ok := s.todos[todoID]
	if !ok || t.UserID != userID {
		return nil, notFoundErr("todo")
	}
	t.Title = title
	t.IsMarked = isMarked
	t.UpdatedAt = time.Now()
	return t, nil
}

func (s *fakeTodoStore) Delete(ctx context.Context, userID, todoID uuid.UUID) error {
	t, ok := s.todos[todoID]
	if !ok || t.UserID != userID {
		return notFoundErr("todo")
	}
	delete(s.todos, todoID)
	return nil
}

// testUser creates a user directly in the store, bypassing signup
func testUser(t *testing.T, users *fakeUserStore, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:          uuid.New(),
		Username:    username,
		Preferences: models.DefaultPreferences(),
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// authedRequest builds a request with the user already in context, the
// way the auth middleware leaves it
func authedRequest(method, target string, body *string, user *models.User) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(*body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(request.WithUser(req.Context(), user))
}

type envelopeBody struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var env envelopeBody
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func unmarshalData(t *testing.T, env envelopeBody, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode envelope data: %v", err)
	}
}
