package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/apierror"
	"github.com/mbrennan/toolhub/internal/database"
)

// envelope is the uniform response shape for all non-redirect endpoints.
// Success is derived from Status so clients never see the two disagree.
type envelope struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// respondJSON sends a success envelope
func respondJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := envelope{
		Status:  status,
		Success: status < 400,
		Message: message,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError maps a tagged error onto the envelope. Untagged errors
// become a generic 500 and the cause is logged server-side only.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := apierror.StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request_failed", zap.Error(err))
	}
	respondJSON(w, status, apierror.MessageOf(err), nil)
}

// decodeJSON decodes a request body, tagging malformed input
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierror.Wrap(apierror.InvalidArgument("Invalid request body."), err)
	}
	return nil
}

// recordActivity appends to the activity log after a successful primary
// mutation. Append failures are logged and never fail the request.
func recordActivity(ctx context.Context, repo database.ActivityStore, logger *zap.Logger, userID uuid.UUID, action string) {
	if err := repo.Append(ctx, userID, action, time.Now()); err != nil {
		logger.Warn("activity_append_failed",
			zap.Error(err),
			zap.String("action", action),
		)
	}
}
