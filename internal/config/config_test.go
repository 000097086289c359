package config

import (
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantErr  bool
		validate func(*testing.T, *Config)
	}{
		{
			name: "minimal valid configuration",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost:5432/toolhub",
				"JWT_SECRET":   "test-secret",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != "8080" {
					t.Errorf("Expected default ServerPort '8080', got '%s'", cfg.ServerPort)
				}
				if cfg.FrontendURL != "http://localhost:5173" {
					t.Errorf("Expected default FrontendURL 'http://localhost:5173', got '%s'", cfg.FrontendURL)
				}
				if cfg.RedisURL != "redis://localhost:6379/0" {
					t.Errorf("Expected default RedisURL 'redis://localhost:6379/0', got '%s'", cfg.RedisURL)
				}
				if cfg.SessionTTLHours != 168 {
					t.Errorf("Expected default SessionTTLHours 168, got %d", cfg.SessionTTLHours)
				}
				if cfg.RabbitMQURL != "" {
					t.Errorf("Expected RabbitMQURL to default to empty, got '%s'", cfg.RabbitMQURL)
				}
				if cfg.BaseURL != "" {
					t.Errorf("Expected BaseURL to default to empty, got '%s'", cfg.BaseURL)
				}
			},
		},
		{
			name: "missing database url",
			env: map[string]string{
				"JWT_SECRET": "test-secret",
			},
			wantErr: true,
		},
		{
			name: "missing jwt secret",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost:5432/toolhub",
			},
			wantErr: true,
		},
		{
			name: "invalid session ttl",
			env: map[string]string{
				"DATABASE_URL":      "postgres://localhost:5432/toolhub",
				"JWT_SECRET":        "test-secret",
				"SESSION_TTL_HOURS": "-1",
			},
			wantErr: true,
		},
		{
			name: "overrides applied",
			env: map[string]string{
				"DATABASE_URL":      "postgres://localhost:5432/toolhub",
				"JWT_SECRET":        "test-secret",
				"SERVER_PORT":       "9090",
				"SESSION_TTL_HOURS": "24",
				"SERVER_DEBUG_MODE": "true",
				"OTEL_ENABLED":      "1",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != "9090" {
					t.Errorf("Expected ServerPort '9090', got '%s'", cfg.ServerPort)
				}
				if cfg.SessionTTLHours != 24 {
					t.Errorf("Expected SessionTTLHours 24, got %d", cfg.SessionTTLHours)
				}
				if !cfg.ServerDebugMode {
					t.Error("Expected ServerDebugMode true")
				}
				if !cfg.OTELEnabled {
					t.Error("Expected OTELEnabled true")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			// Clear keys the case does not set so ambient env cannot leak in
			for _, key := range []string{"DATABASE_URL", "JWT_SECRET", "SERVER_PORT", "SESSION_TTL_HOURS", "SERVER_DEBUG_MODE", "OTEL_ENABLED", "RABBITMQ_URL", "BASE_URL"} {
				if _, ok := tt.env[key]; !ok {
					t.Setenv(key, "")
				}
			}

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}
