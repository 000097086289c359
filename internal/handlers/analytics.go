package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/database"
	"github.com/mbrennan/toolhub/internal/models"
	"github.com/mbrennan/toolhub/internal/request"
)

// AnalyticsHandler computes per-user usage summaries. Pure read: it owns
// no state and derives everything from the activity log and usage counters.
type AnalyticsHandler struct {
	activities database.ActivityStore
	usage      database.ToolUsageStore
	logger     *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(activities database.ActivityStore, usage database.ToolUsageStore, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{activities: activities, usage: usage, logger: logger}
}

// AnalyticsSummary is the aggregated usage view for one user
type AnalyticsSummary struct {
	TotalActions int64                   `json:"totalActions"`
	MostUsedTool *models.ToolUsageEntry  `json:"mostUsedTool"`
	ToolUsage    []models.ToolUsageEntry `json:"toolUsage"`
}

// Summary returns the user's analytics. Absent data yields zeros and
// null, never an error.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r.Context())
	ctx := r.Context()

	totalActions, err := h.activities.Count(ctx, user.ID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	tools, err := h.usage.AllByCount(ctx, user.ID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	summary := AnalyticsSummary{
		TotalActions: totalActions,
		ToolUsage:    tools,
	}
	if len(tools) > 0 {
		summary.MostUsedTool = &tools[0]
	}

	respondJSON(w, http.StatusOK, "Analytics fetched successfully.", summary)
}
