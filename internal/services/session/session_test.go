package session

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	mgr, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	userID := uuid.New()
	token, err := mgr.Issue(userID)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got != userID {
		t.Errorf("Verify returned %s, want %s", got, userID)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	mgr1, _ := NewManager("secret-one", time.Hour)
	mgr2, _ := NewManager("secret-two", time.Hour)

	token, err := mgr1.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := mgr2.Verify(token); err == nil {
		t.Error("expected verification to fail with a different secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	mgr, _ := NewManager("test-secret", -time.Minute)

	token, err := mgr.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := mgr.Verify(token); err == nil {
		t.Error("expected verification to fail for an expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	mgr, _ := NewManager("test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-token", strings.Repeat("a", 100)} {
		if _, err := mgr.Verify(tok); err == nil {
			t.Errorf("expected verification to fail for %q", tok)
		}
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewManager("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !CheckPassword(hash, "correct horse") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Error("expected mismatched password to fail")
	}
}
