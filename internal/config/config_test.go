package config_test

import (
	"briefly/internal/config"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN", "123:abc")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DBPath != "db.sqlite" {
		t.Fatalf("unexpected DB path: %q", cfg.DBPath)
	}

	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Fatalf("unexpected model: %q", cfg.GeminiModel)
	}

	if !cfg.SummarizeSingleFlight {
		t.Fatalf("expected single-flight to be enabled by default")
	}

	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected session TTL: %v", cfg.SessionTTL)
	}
}

func TestLoadAllowedUsers(t *testing.T) {
	t.Setenv("TOKEN", "123:abc")
	t.Setenv("ALLOWED_USERS", "1,2,3")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(cfg.AllowedUsers, []int64{1, 2, 3}) {
		t.Fatalf("unexpected allowed users: %v", cfg.AllowedUsers)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TOKEN", "")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error when TOKEN is empty")
	}
}
