package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/apierror"
	"github.com/mbrennan/toolhub/internal/database"
	"github.com/mbrennan/toolhub/internal/middleware"
	"github.com/mbrennan/toolhub/internal/models"
	"github.com/mbrennan/toolhub/internal/request"
	"github.com/mbrennan/toolhub/internal/services/session"
	"github.com/mbrennan/toolhub/internal/validation"
)

// AuthHandler handles signup, login and session lifecycle
type AuthHandler struct {
	users        database.UserStore
	activities   database.ActivityStore
	sessions     *session.Manager
	secureCookie bool
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users database.UserStore, activities database.ActivityStore, sessions *session.Manager, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:        users,
		activities:   activities,
		sessions:     sessions,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// RegisterPublicRoutes registers routes that must not require a session
func (h *AuthHandler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/signup", h.Signup).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

// RegisterRoutes registers routes behind the auth middleware
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.HandleFunc("/me", h.Me).Methods("GET")
	r.HandleFunc("/activity", h.ReportActivity).Methods("POST")
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=20"`
}

func validateCredentials(req *credentialsRequest) error {
	if req.Username == "" || req.Password == "" {
		return apierror.Unauthorized("Please provide both username and password!")
	}
	req.Username = validation.NormalizeUsername(req.Username)
	if err := validation.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Username":
				return apierror.UnprocessableEntity("Invalid Username!")
			case "Password":
				return apierror.UnprocessableEntity("Invalid Password!")
			}
		}
		return err
	}
	return nil
}

// Signup creates a new account
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := validateCredentials(&req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	hash, err := session.HashPassword(req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	ctx := r.Context()
	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: hash,
		Preferences:  models.DefaultPreferences(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			respondError(w, h.logger, apierror.Conflict("A user with this username already exists!"))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	recordActivity(ctx, h.activities, h.logger, user.ID, "Signed Up")

	h.logger.Info("user_signed_up", zap.String("username", user.Username))
	respondJSON(w, http.StatusOK, "Signup successful!", nil)
}

// Login verifies credentials and issues a session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, h.logger, apierror.Unauthorized("Please provide both username and password!"))
		return
	}
	req.Username = validation.NormalizeUsername(req.Username)

	ctx := r.Context()
	user, err := h.users.GetByUsername(ctx, req.Username)
	if err != nil {
		// Missing user and wrong password respond identically
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, h.logger, apierror.Unauthorized("Invalid credentials."))
			return
		}
		respondError(w, h.logger, err)
		return
	}
	if !session.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, h.logger, apierror.Unauthorized("Invalid credentials."))
		return
	}

	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, h.sessions.TTL()))

	recordActivity(ctx, h.activities, h.logger, user.ID, "Logged In")

	h.logger.Info("user_logged_in", zap.String("username", user.Username))
	respondJSON(w, http.StatusOK, "Login Successful.", nil)
}

// Logout records the event and clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	recordActivity(r.Context(), h.activities, h.logger, user.ID, "Logged Out")

	http.SetCookie(w, h.sessionCookie("", -time.Hour))
	respondJSON(w, http.StatusOK, "Logged Out Successfully.", nil)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())
	respondJSON(w, http.StatusOK, "User fetched successfully.", map[string]any{"user": user})
}

type reportActivityRequest struct {
	Action string `json:"action"`
	Time   string `json:"time"`
}

// ReportActivity appends a caller-supplied entry to the activity log
func (h *AuthHandler) ReportActivity(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req reportActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if req.Action == "" || req.Time == "" {
		respondError(w, h.logger, apierror.InvalidArgument("Please provide both action and time."))
		return
	}

	at, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		respondError(w, h.logger, apierror.InvalidArgument("Invalid time format."))
		return
	}

	if err := h.activities.Append(r.Context(), user.ID, req.Action, at); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, "Activity recorded successfully.", nil)
}

func (h *AuthHandler) sessionCookie(value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookie,
		MaxAge:   int(maxAge.Seconds()),
	}
}
