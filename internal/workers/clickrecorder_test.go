package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/models"
	"github.com/mbrennan/toolhub/internal/queue"
)

type fakeClickStore struct {
	inserted []*models.LinkClick
	err      error
}

func (f *fakeClickStore) Insert(ctx context.Context, click *models.LinkClick) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, click)
	return nil
}

func TestProcessEvent(t *testing.T) {
	t.Parallel()

	store := &fakeClickStore{}
	recorder := NewClickRecorder(store, zap.NewNop())

	linkID := uuid.New()
	event := &queue.ClickEvent{
		ID:        uuid.New(),
		LinkID:    linkID,
		ClickedAt: time.Now(),
		Referrer:  "https://example.com",
		UserAgent: "test-agent",
	}

	if err := recorder.ProcessEvent(context.Background(), event); err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}

	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 click record, got %d", len(store.inserted))
	}
	click := store.inserted[0]
	if click.LinkID != linkID {
		t.Errorf("LinkID = %s, want %s", click.LinkID, linkID)
	}
	if click.Referrer != "https://example.com" {
		t.Errorf("Referrer = %q", click.Referrer)
	}
	if click.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %q", click.UserAgent)
	}
}

func TestProcessEventStoreError(t *testing.T) {
	t.Parallel()

	store := &fakeClickStore{err: errors.New("db down")}
	recorder := NewClickRecorder(store, zap.NewNop())

	event := queue.NewClickEvent(uuid.New(), "", "")
	if err := recorder.ProcessEvent(context.Background(), event); err == nil {
		t.Error("expected error when store fails")
	}
}

func TestFailedEventRequeuesOnceThenDeadLetters(t *testing.T) {
	t.Parallel()

	// A first failure retries; a redelivery of the same message must
	// not requeue again or a down store spins the event forever
	first := &queue.Message{Redelivered: false}
	if !requeueOnFailure(first) {
		t.Error("first failure should requeue")
	}

	redelivered := &queue.Message{Redelivered: true}
	if requeueOnFailure(redelivered) {
		t.Error("redelivered failure should dead-letter, not requeue")
	}
}
