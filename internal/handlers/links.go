package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/apierror"
	"github.com/mbrennan/toolhub/internal/database"
	"github.com/mbrennan/toolhub/internal/models"
	"github.com/mbrennan/toolhub/internal/queue"
	"github.com/mbrennan/toolhub/internal/request"
	"github.com/mbrennan/toolhub/internal/shortcode"
)

// maxShortCodeAttempts bounds regeneration when a freshly drawn code
// collides with an existing one.
const maxShortCodeAttempts = 5

// defaultClickHistoryLimit caps the click records returned per link
const defaultClickHistoryLimit = 50

// LinkHandler handles the short link registry and redirects
type LinkHandler struct {
	links      database.LinkStore
	clicks     database.LinkClickStore
	activities database.ActivityStore
	events     queue.EventQueue // optional, nil disables the click stream
	baseURL    string           // optional, request-derived when empty
	logger     *zap.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(links database.LinkStore, clicks database.LinkClickStore, activities database.ActivityStore, events queue.EventQueue, baseURL string, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		links:      links,
		clicks:     clicks,
		activities: activities,
		events:     events,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// RegisterRoutes registers authenticated link routes on the given router
func (h *LinkHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/getAll", h.GetAll).Methods("GET")
	r.HandleFunc("/new", h.Create).Methods("POST")
	r.HandleFunc("/remove", h.Delete).Methods("DELETE", "POST")
	r.HandleFunc("/{id}/clicks", h.Clicks).Methods("GET")
}

// RegisterPublicRoutes registers the anonymous redirect route
func (h *LinkHandler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/goto/{shortCode}", h.Redirect).Methods("GET")
}

// shortURLBase returns the prefix short URLs are minted and resolved
// under. Stored short URLs carry the full absolute form, so minting and
// resolution must agree on it.
func (h *LinkHandler) shortURLBase(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GetAll lists the user's links
func (h *LinkHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	links, err := h.links.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, "URLs fetched successfully.", map[string]any{"urls": links})
}

type linkRequest struct {
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
}

// Create mints a new short link. Short codes are drawn uniformly at
// random; a collision with an existing link triggers regeneration.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req linkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if req.OriginalURL == "" {
		respondError(w, h.logger, apierror.InvalidArgument("No Url provided."))
		return
	}

	ctx := r.Context()
	base := h.shortURLBase(r)

	var link *models.Link
	for attempt := 0; attempt < maxShortCodeAttempts; attempt++ {
		code, err := shortcode.New()
		if err != nil {
			respondError(w, h.logger, err)
			return
		}

		candidate := &models.Link{
			ID:          uuid.New(),
			UserID:      user.ID,
			ShortURL:    fmt.Sprintf("%s/url/goto/%s", base, code),
			OriginalURL: req.OriginalURL,
		}
		err = h.links.Create(ctx, candidate)
		if err == nil {
			link = candidate
			break
		}
		if !database.IsUniqueViolation(err) {
			respondError(w, h.logger, err)
			return
		}
		h.logger.Warn("short_code_collision", zap.Int("attempt", attempt+1))
	}
	if link == nil {
		respondError(w, h.logger, apierror.Conflict("Could not allocate a short url."))
		return
	}

	recordActivity(ctx, h.activities, h.logger, user.ID, "Created a short url.")

	respondJSON(w, http.StatusOK, "Url created successfully.", link)
}

// Delete removes a link by its short URL
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	var req linkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	if req.ShortURL == "" {
		respondError(w, h.logger, apierror.InvalidArgument("No url provided."))
		return
	}

	ctx := r.Context()
	if err := h.links.Delete(ctx, user.ID, req.ShortURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, h.logger, apierror.NotFound("No such url exists."))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	recordActivity(ctx, h.activities, h.logger, user.ID, "Removed a short url.")

	respondJSON(w, http.StatusOK, "Url removed.", nil)
}

// Redirect resolves a short code and 302-redirects to the destination.
// Resolution increments the click counter atomically; unknown codes
// increment nothing.
func (h *LinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["shortCode"]
	if code == "" {
		respondError(w, h.logger, apierror.InvalidArgument("Invalid url."))
		return
	}

	ctx := r.Context()
	shortURL := fmt.Sprintf("%s/url/goto/%s", h.shortURLBase(r), code)

	link, err := h.links.Resolve(ctx, shortURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, h.logger, apierror.NotFound("Invalid url."))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	h.publishClick(link, r)

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

// publishClick emits a click event for the history stream. Best-effort:
// publish failures never affect the redirect.
func (h *LinkHandler) publishClick(link *models.Link, r *http.Request) {
	if h.events == nil {
		return
	}
	event := queue.NewClickEvent(link.ID, r.Referer(), r.UserAgent())
	if err := h.events.Publish(r.Context(), event); err != nil {
		h.logger.Warn("click_event_publish_failed",
			zap.Error(err),
			zap.String("link_id", link.ID.String()),
		)
	}
}

// Clicks returns recorded click events for an owned link
func (h *LinkHandler) Clicks(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())

	linkID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, h.logger, apierror.InvalidArgument("Invalid url id."))
		return
	}

	ctx := r.Context()
	link, err := h.links.GetOwned(ctx, user.ID, linkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, h.logger, apierror.NotFound("No such url exists."))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	limit := defaultClickHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed < defaultClickHistoryLimit {
			limit = parsed
		}
	}

	clicks, err := h.clicks.ListByLink(ctx, link.ID, limit)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, "Clicks fetched successfully.", map[string]any{
		"clicks":      clicks,
		"totalClicks": link.Clicks,
	})
}
