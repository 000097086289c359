package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/apierror"
	"github.com/mbrennan/toolhub/internal/database"
	"github.com/mbrennan/toolhub/internal/models"
	"github.com/mbrennan/toolhub/internal/request"
	"github.com/mbrennan/toolhub/internal/services/convert"
	"github.com/mbrennan/toolhub/internal/services/passgen"
	"github.com/mbrennan/toolhub/internal/services/weather"
)

const (
	// DefaultActivityHistoryLimit is how many log entries the history
	// endpoint returns when no limit is given
	DefaultActivityHistoryLimit = 10
	// DefaultRecentToolsLimit is how many tools the dashboard endpoint
	// returns when no limit is given
	DefaultRecentToolsLimit = 5
)

// WeatherService fetches current weather for a city
type WeatherService interface {
	Current(ctx context.Context, city string) (*weather.Report, error)
}

// ToolsHandler handles the built-in tools and dashboard reads
type ToolsHandler struct {
	users      database.UserStore
	usage      database.ToolUsageStore
	activities database.ActivityStore
	weather    WeatherService
	logger     *zap.Logger
}

// NewToolsHandler creates a new tools handler
func NewToolsHandler(users database.UserStore, usage database.ToolUsageStore, activities database.ActivityStore, weatherSvc WeatherService, logger *zap.Logger) *ToolsHandler {
	return &ToolsHandler{
		users:      users,
		usage:      usage,
		activities: activities,
		weather:    weatherSvc,
		logger:     logger,
	}
}

// RegisterRoutes registers tool routes on the given router
func (h *ToolsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/password/generate", h.GeneratePassword).Methods("POST")
	r.HandleFunc("/converter/convert", h.Convert).Methods("POST")
	r.HandleFunc("/weather/city", h.UpdateWeatherCity).Methods("POST")
	r.HandleFunc("/weather", h.Weather).Methods("GET")
	r.HandleFunc("/activity/history", h.ActivityHistory).Methods("GET")
	r.HandleFunc("/dashboard/recent-tools", h.RecentTools).Methods("GET")
	r.HandleFunc("/preferences", h.GetPreferences).Methods("GET")
	r.HandleFunc("/preferences", h.UpdatePreferences).Methods("PUT", "PATCH", "POST")
	r.HandleFunc("/note/last", h.GetLastNote).Methods("GET")
	r.HandleFunc("/note/last", h.UpdateLastNote).Methods("PUT", "POST")
}

// trackTool bumps the per-tool usage counter. Best-effort like activity
// appends: a failed increment is logged, not surfaced.
func (h *ToolsHandler) trackTool(ctx context.Context, userID uuid.UUID, toolName string) {
	if err := h.usage.RecordUse(ctx, userID, toolName, time.Now()); err != nil {
		h.logger.Warn("tool_usage_record_failed",
			zap.Error(err),
			zap.String("tool", toolName),
		)
	}
}

type generatePasswordRequest struct {
	Length           *int  `json:"length"`
	IncludeSymbols   *bool `json:"includeSymbols"`
	IncludeNumbers   *bool `json:"includeNumbers"`
	IncludeUppercase *bool `json:"includeUppercase"`
}

// GeneratePassword generates a random password
func (h *ToolsHandler) GeneratePassword(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req generatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	opts := passgen.DefaultOptions()
	if req.Length != nil {
		opts.Length = *req.Length
	}
	if req.IncludeSymbols != nil {
		opts.IncludeSymbols = *req.IncludeSymbols
	}
	if req.IncludeNumbers != nil {
		opts.IncludeNumbers = *req.IncludeNumbers
	}
	if req.IncludeUppercase != nil {
		opts.IncludeUppercase = *req.IncludeUppercase
	}

	password, err := passgen.Generate(opts)
	if err != nil {
		respondError(w, h.logger, apierror.InvalidArgument(fmt.Sprintf("Password length must be between %d and %d.", passgen.MinLength, passgen.MaxLength)))
		return
	}

	ctx := r.Context()
	h.trackTool(ctx, user.ID, models.ToolPasswordGenerator)
	recordActivity(ctx, h.activities, h.logger, user.ID, "Generated a password.")

	respondJSON(w, http.StatusOK, "Password generated successfully.", map[string]any{"password": password})
}

type convertRequest struct {
	Value          *float64 `json:"value"`
	FromUnit       string   `json:"fromUnit"`
	ToUnit         string   `json:"toUnit"`
	ConversionType string   `json:"conversionType"`
}

// Convert converts a value between units
func (h *ToolsHandler) Convert(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req convertRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if req.Value == nil || req.FromUnit == "" || req.ToUnit == "" || req.ConversionType == "" {
		respondError(w, h.logger, apierror.InvalidArgument("Missing required fields: value, fromUnit, toUnit, conversionType."))
		return
	}

	result, err := convert.Convert(*req.Value, req.FromUnit, req.ToUnit, req.ConversionType)
	if err != nil {
		respondError(w, h.logger, conversionError(err))
		return
	}

	ctx := r.Context()
	h.trackTool(ctx, user.ID, models.ToolUnitConverter)
	recordActivity(ctx, h.activities, h.logger, user.ID, fmt.Sprintf("Converted %s.", req.ConversionType))

	respondJSON(w, http.StatusOK, "Conversion successful.", map[string]any{
		"originalValue":  *req.Value,
		"convertedValue": result,
		"fromUnit":       req.FromUnit,
		"toUnit":         req.ToUnit,
	})
}

func conversionError(err error) error {
	switch {
	case errors.Is(err, convert.ErrInvalidLengthUnits):
		return apierror.InvalidArgument("Invalid length units.")
	case errors.Is(err, convert.ErrInvalidWeightUnits):
		return apierror.InvalidArgument("Invalid weight units.")
	case errors.Is(err, convert.ErrInvalidTemperatureUnits):
		return apierror.InvalidArgument("Invalid temperature units.")
	case errors.Is(err, convert.ErrInvalidType):
		return apierror.InvalidArgument("Invalid conversion type. Use: length, weight, temperature.")
	default:
		return err
	}
}

type weatherCityRequest struct {
	City string `json:"city"`
}

// UpdateWeatherCity stores the user's last searched city
func (h *ToolsHandler) UpdateWeatherCity(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req weatherCityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if req.City == "" {
		respondError(w, h.logger, apierror.InvalidArgument("City name is required."))
		return
	}

	ctx := r.Context()
	if err := h.users.SetLastCity(ctx, user.ID, req.City); err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.trackTool(ctx, user.ID, models.ToolWeatherApp)
	recordActivity(ctx, h.activities, h.logger, user.ID, fmt.Sprintf("Searched weather for %s.", req.City))

	respondJSON(w, http.StatusOK, "City updated successfully.", map[string]any{"city": req.City})
}

// Weather returns current weather for a city. Falls back to the user's
// last searched city, then their default city.
func (h *ToolsHandler) Weather(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	city := r.URL.Query().Get("city")
	if city == "" && user.LastCity != nil {
		city = *user.LastCity
	}
	if city == "" {
		city = user.Preferences.DefaultCity
	}
	if city == "" {
		respondError(w, h.logger, apierror.InvalidArgument("City name is required."))
		return
	}

	report, err := h.weather.Current(r.Context(), city)
	if err != nil {
		if errors.Is(err, weather.ErrCityNotFound) {
			respondError(w, h.logger, apierror.NotFound("City not found."))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, "Weather fetched successfully.", report)
}

// ActivityHistory returns the most recent activity entries
func (h *ToolsHandler) ActivityHistory(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	limit := queryLimit(r, DefaultActivityHistoryLimit)
	history, err := h.activities.Recent(r.Context(), user.ID, limit)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, "Activity history fetched successfully.", map[string]any{"history": history})
}

// RecentTools returns the most recently used tools
func (h *ToolsHandler) RecentTools(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	limit := queryLimit(r, DefaultRecentToolsLimit)
	tools, err := h.usage.Recent(r.Context(), user.ID, limit)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, "Recently used tools fetched successfully.", map[string]any{"tools": tools})
}

// GetPreferences returns the user's preferences
func (h *ToolsHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())
	respondJSON(w, http.StatusOK, "Preferences fetched successfully.", map[string]any{"preferences": user.Preferences})
}

type updatePreferencesRequest struct {
	DarkMode                 *bool   `json:"darkMode"`
	DefaultCity              *string `json:"defaultCity"`
	PreferredTemperatureUnit *string `json:"preferredTemperatureUnit"`
	PreferredLengthUnit      *string `json:"preferredLengthUnit"`
	PreferredWeightUnit      *string `json:"preferredWeightUnit"`
}

// UpdatePreferences applies a partial preferences update
func (h *ToolsHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req updatePreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	update := database.PreferencesUpdate{
		DarkMode:                 req.DarkMode,
		DefaultCity:              nonEmpty(req.DefaultCity),
		PreferredTemperatureUnit: nonEmpty(req.PreferredTemperatureUnit),
		PreferredLengthUnit:      nonEmpty(req.PreferredLengthUnit),
		PreferredWeightUnit:      nonEmpty(req.PreferredWeightUnit),
	}

	prefs, err := h.users.UpdatePreferences(r.Context(), user.ID, update)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, "Preferences updated successfully.", map[string]any{"preferences": prefs})
}

// GetLastNote returns the ID of the user's last viewed note
func (h *ToolsHandler) GetLastNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())
	respondJSON(w, http.StatusOK, "Last note ID fetched successfully.", map[string]any{"lastNoteId": user.LastNote})
}

type lastNoteRequest struct {
	NoteID string `json:"noteId"`
}

// UpdateLastNote stores the ID of the user's last viewed note
func (h *ToolsHandler) UpdateLastNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req lastNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if req.NoteID == "" {
		respondError(w, h.logger, apierror.InvalidArgument("Note ID is required."))
		return
	}

	noteID, err := uuid.Parse(req.NoteID)
	if err != nil {
		respondError(w, h.logger, apierror.InvalidArgument("Invalid Note ID."))
		return
	}

	if err := h.users.SetLastNote(r.Context(), user.ID, noteID); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, "Last note updated successfully.", nil)
}

func queryLimit(r *http.Request, fallback int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
