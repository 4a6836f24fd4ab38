package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SIMULATION_BASE_URL", "")
	t.Setenv("MAX_SHUFFLES_PER_DAY", "")
	t.Setenv("DISMISSED_RETENTION_DAYS", "")

	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("Expected default port 3001, got %s", cfg.Port)
	}
	if cfg.SimulationBaseURL != "https://api.openai.com/v1" {
		t.Errorf("Unexpected default simulation base URL: %s", cfg.SimulationBaseURL)
	}
	if cfg.MaxShufflesPerDay != 50 {
		t.Errorf("Expected default shuffle quota 50, got %d", cfg.MaxShufflesPerDay)
	}
	if cfg.DismissedRetentionDays != 30 {
		t.Errorf("Expected default retention 30 days, got %d", cfg.DismissedRetentionDays)
	}
}

func TestLoadTrimsSimulationBaseURL(t *testing.T) {
	t.Setenv("SIMULATION_BASE_URL", "http://localhost:11434/v1/")

	cfg := Load()
	if cfg.SimulationBaseURL != "http://localhost:11434/v1" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.SimulationBaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_SHUFFLES_PER_DAY", "-1")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if cfg.MaxShufflesPerDay != -1 {
		t.Errorf("Expected quota disabled (-1), got %d", cfg.MaxShufflesPerDay)
	}
}
