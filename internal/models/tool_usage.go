package models

import (
	"time"

	"github.com/google/uuid"
)

// Canonical tool names recorded by the usage tracker
const (
	ToolPasswordGenerator = "Password Generator"
	ToolUnitConverter     = "Unit Converter"
	ToolWeatherApp        = "Weather App"
)

// ToolUsageEntry is a per-tool counter with a last-used timestamp.
// At most one entry exists per (user, tool name) pair.
type ToolUsageEntry struct {
	UserID     uuid.UUID `json:"-"`
	Name       string    `json:"name"`
	UsageCount int64     `json:"usageCount"`
	LastUsed   time.Time `json:"lastUsed"`
}
