package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "unauthorized", err: Unauthorized("Unauthorized."), status: http.StatusUnauthorized},
		{name: "invalid argument", err: InvalidArgument("No Url provided."), status: http.StatusBadRequest},
		{name: "unprocessable", err: UnprocessableEntity("Invalid Username!"), status: http.StatusUnprocessableEntity},
		{name: "not found", err: NotFound("No such url exists."), status: http.StatusNotFound},
		{name: "conflict", err: Conflict("A user with this username already exists!"), status: http.StatusConflict},
		{name: "wrapped tagged error", err: fmt.Errorf("create link: %w", Conflict("Short url already exists.")), status: http.StatusConflict},
		{name: "untagged error", err: errors.New("connection refused"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := StatusOf(tt.err); got != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, got)
			}
		})
	}
}

func TestMessageOf_UntaggedErrorIsGeneric(t *testing.T) {
	t.Parallel()

	err := errors.New("pq: password authentication failed for user postgres")
	if got := MessageOf(err); got != "Internal server error." {
		t.Errorf("Expected generic message, got %q", got)
	}
}

func TestWrap_PreservesStatusAndCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("duplicate key value violates unique constraint")
	err := Wrap(Conflict("Short url already exists."), cause)

	if StatusOf(err) != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", StatusOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("Expected wrapped error to match its cause via errors.Is")
	}
	if MessageOf(err) != "Short url already exists." {
		t.Errorf("Unexpected message %q", MessageOf(err))
	}
}
