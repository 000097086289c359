package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/apierror"
	"github.com/mbrennan/toolhub/internal/database"
	"github.com/mbrennan/toolhub/internal/models"
	"github.com/mbrennan/toolhub/internal/request"
)

// NoteHandler handles note CRUD
type NoteHandler struct {
	notes      database.NoteStore
	activities database.ActivityStore
	logger     *zap.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(notes database.NoteStore, activities database.ActivityStore, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, activities: activities, logger: logger}
}

// RegisterRoutes registers note routes on the given router
func (h *NoteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/getAll", h.GetAll).Methods("GET")
	r.HandleFunc("/new", h.Add).Methods("POST")
	r.HandleFunc("/update", h.Update).Methods("PUT", "PATCH", "POST")
	r.HandleFunc("/remove", h.Delete).Methods("DELETE", "POST")
}

// GetAll lists the user's notes
func (h *NoteHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	notes, err := h.notes.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, "Notes fetched successfully.", map[string]any{"notes": notes})
}

type noteRequest struct {
	NoteID      string `json:"noteId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Add creates a note
func (h *NoteHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if req.Title == "" || req.Description == "" {
		respondError(w, h.logger, apierror.UnprocessableEntity("Missing required fields in body: need both title and description."))
		return
	}

	ctx := r.Context()
	note := &models.Note{
		ID:          uuid.New(),
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.notes.Create(ctx, note); err != nil {
		respondError(w, h.logger, err)
		return
	}

	recordActivity(ctx, h.activities, h.logger, user.ID, "Added a note.")

	respondJSON(w, http.StatusOK, "Note added successfully.", map[string]any{"note": note})
}

// Update edits a note's title and description
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	noteID, err := uuid.Parse(req.NoteID)
	if err != nil {
		respondError(w, h.logger, apierror.InvalidArgument("Invalid Note ID."))
		return
	}
	if req.Title == "" || req.Description == "" {
		respondError(w, h.logger, apierror.UnprocessableEntity("Missing required fields in body: need both title and description."))
		return
	}

	ctx := r.Context()
	note, err := h.notes.Update(ctx, user.ID, noteID, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, h.logger, apierror.NotFound("Note not found."))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	recordActivity(ctx, h.activities, h.logger, user.ID, "Updated a note.")

	respondJSON(w, http.StatusOK, "Note updated successfully.", map[string]any{"note": note})
}

// Delete removes a note
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	noteID, err := uuid.Parse(req.NoteID)
	if err != nil {
		respondError(w, h.logger, apierror.InvalidArgument("Invalid Note ID."))
		return
	}

	ctx := r.Context()
	if err := h.notes.Delete(ctx, user.ID, noteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, h.logger, apierror.NotFound("Note not found."))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	recordActivity(ctx, h.activities, h.logger, user.ID, "Removed a note.")

	respondJSON(w, http.StatusOK, "Note deleted successfully.", nil)
}
