package models

import (
	"time"

	"github.com/google/uuid"
)

// Preferences holds per-user display and unit preferences
type Preferences struct {
	DarkMode                 bool   `json:"darkMode"`
	DefaultCity              string `json:"defaultCity"`
	PreferredTemperatureUnit string `json:"preferredTemperatureUnit"`
	PreferredLengthUnit      string `json:"preferredLengthUnit"`
	PreferredWeightUnit      string `json:"preferredWeightUnit"`
}

// DefaultPreferences returns the preferences assigned to a new user
func DefaultPreferences() Preferences {
	return Preferences{
		DarkMode:                 false,
		DefaultCity:              "London",
		PreferredTemperatureUnit: "C",
		PreferredLengthUnit:      "km",
		PreferredWeightUnit:      "kg",
	}
}

// User represents a user in the system
type User struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	LastNote     *uuid.UUID  `json:"lastNote,omitempty"`
	LastCity     *string     `json:"lastCityWeather,omitempty"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
