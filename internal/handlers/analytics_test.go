package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mbrennan/toolhub/internal/models"
)

func TestAnalyticsNewUser(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	activities := newFakeActivityStore()
	usage := newFakeToolUsageStore()
	h := NewAnalyticsHandler(activities, usage, zap.NewNop())
	user := testUser(t, users, "alice")

	req := authedRequest("GET", "/tools/analytics", nil, user)
	w := httptest.NewRecorder()
	h.Summary(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Message != "Analytics fetched successfully." {
		t.Errorf("message = %q", env.Message)
	}

	var summary AnalyticsSummary
	unmarshalData(t, env, &summary)
	if summary.TotalActions != 0 {
		t.Errorf("TotalActions = %d, want 0", summary.TotalActions)
	}
	if summary.MostUsedTool != nil {
		t.Errorf("MostUsedTool = %+v, want nil", summary.MostUsedTool)
	}
	if len(summary.ToolUsage) != 0 {
		t.Errorf("ToolUsage = %+v, want empty", summary.ToolUsage)
	}
}

func TestAnalyticsSummary(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	activities := newFakeActivityStore()
	usage := newFakeToolUsageStore()
	h := NewAnalyticsHandler(activities, usage, zap.NewNop())
	alice := testUser(t, users, "alice")
	bob := testUser(t, users, "bob")

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_ = activities.Append(ctx, alice.ID, "Generated a password.", time.Now())
	}
	_ = activities.Append(ctx, bob.ID, "Converted length.", time.Now())

	for i := 0; i < 3; i++ {
		_ = usage.RecordUse(ctx, alice.ID, models.ToolPasswordGenerator, time.Now())
	}
	_ = usage.RecordUse(ctx, alice.ID, models.ToolUnitConverter, time.Now())
	_ = usage.RecordUse(ctx, bob.ID, models.ToolWeatherApp, time.Now())

	req := authedRequest("GET", "/tools/analytics", nil, alice)
	w := httptest.NewRecorder()
	h.Summary(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var summary AnalyticsSummary
	unmarshalData(t, decodeEnvelope(t, w), &summary)

	// Only alice's actions count
	if summary.TotalActions != 4 {
		t.Errorf("TotalActions = %d, want 4", summary.TotalActions)
	}
	if summary.MostUsedTool == nil {
		t.Fatal("MostUsedTool is nil")
	}
	if summary.MostUsedTool.Name != models.ToolPasswordGenerator || summary.MostUsedTool.UsageCount != 3 {
		t.Errorf("MostUsedTool = %+v", summary.MostUsedTool)
	}

	// Tool usage sorted by count, descending
	if len(summary.ToolUsage) != 2 {
		t.Fatalf("ToolUsage length = %d, want 2", len(summary.ToolUsage))
	}
	if summary.ToolUsage[0].UsageCount < summary.ToolUsage[1].UsageCount {
		t.Errorf("ToolUsage not sorted by count: %+v", summary.ToolUsage)
	}
}
