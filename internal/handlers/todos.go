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

// TodoHandler handles todo CRUD
type TodoHandler struct {
	todos      database.TodoStore
	activities database.ActivityStore
	logger     *zap.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todos database.TodoStore, activities database.ActivityStore, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, activities: activities, logger: logger}
}

// RegisterRoutes registers todo routes on the given router
func (h *TodoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/getAll", h.GetAll).Methods("GET")
	r.HandleFunc("/new", h.Add).Methods("POST")
	r.HandleFunc("/update", h.Update).Methods("PUT", "PATCH", "POST")
	r.HandleFunc("/remove", h.Delete).Methods("DELETE", "POST")
}

// GetAll lists the user's todos
func (h *TodoHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	todos, err := h.todos.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, "Todos fetched successfully.", map[string]any{"todos": todos})
}

type todoRequest struct {
	TodoID   string `json:"todoId"`
	Title    string `json:"title"`
	IsMarked *bool  `json:"isMarked"`
}

// Add creates a todo. isMarked defaults to false.
func (h *TodoHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req todoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if req.Title == "" {
		respondError(w, h.logger, apierror.UnprocessableEntity("Title is required."))
		return
	}

	isMarked := false
	if req.IsMarked != nil {
		isMarked = *req.IsMarked
	}

	ctx := r.Context()
	todo := &models.Todo{
		ID:       uuid.New(),
		UserID:   user.ID,
		Title:    req.Title,
		IsMarked: isMarked,
	}
	if err := h.todos.Create(ctx, todo); err != nil {
		respondError(w, h.logger, err)
		return
	}

	recordActivity(ctx, h.activities, h.logger, user.ID, "Added a todo.")

	respondJSON(w, http.StatusOK, "Todo added successfully.", map[string]any{"todo": todo})
}

// Update edits a todo's title and marked state
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req todoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	todoID, err := uuid.Parse(req.TodoID)
	if err != nil {
		respondError(w, h.logger, apierror.InvalidArgument("Invalid Todo ID."))
		return
	}
	if req.Title == "" || req.IsMarked == nil {
		respondError(w, h.logger, apierror.UnprocessableEntity("Missing required fields in body: need both title and isMarked."))
		return
	}

	ctx := r.Context()
	todo, err := h.todos.Update(ctx, user.ID, todoID, req.Title, *req.IsMarked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, h.logger, apierror.NotFound("Todo not found."))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	recordActivity(ctx, h.activities, h.logger, user.ID, "Updated a todo.")

	respondJSON(w, http.StatusOK, "Todo updated successfully.", map[string]any{"todo": todo})
}

// Delete removes a todo
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req todoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	todoID, err := uuid.Parse(req.TodoID)
	if err != nil {
		respondError(w, h.logger, apierror.InvalidArgument("Invalid Todo ID."))
		return
	}

	ctx := r.Context()
	if err := h.todos.Delete(ctx, user.ID, todoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, h.logger, apierror.NotFound("Todo not found."))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	recordActivity(ctx, h.activities, h.logger, user.ID, "Removed a todo.")

	respondJSON(w, http.StatusOK, "Todo deleted successfully", nil)
}
