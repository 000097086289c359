package middleware

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/database"
	"github.com/mbrennan/toolhub/internal/request"
	"github.com/mbrennan/toolhub/internal/services/session"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "token"

// Auth creates authentication middleware that validates the session cookie
// and loads the user into the request context.
func Auth(sessions *session.Manager, users database.UserStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				respondError(w, http.StatusUnauthorized, "Unauthorized.", logger)
				return
			}

			userID, err := sessions.Verify(cookie.Value)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Unauthorized.", logger)
				return
			}

			ctx := r.Context()
			user, err := users.GetByID(ctx, userID)
			if err != nil {
				// A valid token for a deleted user is still unauthorized;
				// anything else is a storage failure.
				if errors.Is(err, sql.ErrNoRows) {
					respondError(w, http.StatusUnauthorized, "Unauthorized.", logger)
					return
				}
				logger.Error("auth_user_lookup_failed", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "Internal server error.", logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"status":  status,
		"success": false,
		"message": message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
		)
	}
}
