package middleware

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/database"
	"github.com/mbrennan/toolhub/internal/models"
	"github.com/mbrennan/toolhub/internal/request"
	"github.com/mbrennan/toolhub/internal/services/session"
)

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	return user, nil
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
}

func (s *fakeUserStore) UpdatePreferences(ctx context.Context, userID uuid.UUID, update database.PreferencesUpdate) (*models.Preferences, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	return &user.Preferences, nil
}

func (s *fakeUserStore) SetLastNote(ctx context.Context, userID, noteID uuid.UUID) error {
	return nil
}

func (s *fakeUserStore) SetLastCity(ctx context.Context, userID uuid.UUID, city string) error {
	return nil
}

func TestAuth(t *testing.T) {
	t.Parallel()

	sessions, err := session.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	user := &models.User{ID: uuid.New(), Username: "alice"}
	users := newFakeUserStore(user)

	validToken, err := sessions.Issue(user.ID)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	missingUserToken, err := sessions.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
		wantUser   bool
	}{
		{
			name:       "valid session",
			cookie:     &http.Cookie{Name: SessionCookieName, Value: validToken},
			wantStatus: http.StatusOK,
			wantUser:   true,
		},
		{
			name:       "no cookie",
			cookie:     nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			cookie:     &http.Cookie{Name: SessionCookieName, Value: "garbage"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token for deleted user",
			cookie:     &http.Cookie{Name: SessionCookieName, Value: missingUserToken},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotUser *models.User
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = request.UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			mw := Auth(sessions, users, zap.NewNop())(handler)

			req := httptest.NewRequest("GET", "/user/me", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()

			mw.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantUser {
				if gotUser == nil || gotUser.ID != user.ID {
					t.Error("expected authenticated user in context")
				}
			} else if gotUser != nil {
				t.Error("handler should not run for rejected requests")
			}
		})
	}
}
