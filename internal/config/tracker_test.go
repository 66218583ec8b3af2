package config

import (
	"testing"
	"time"
)

func TestLoadTrackerDefaults(t *testing.T) {
	cfg, err := LoadTracker()
	if err != nil {
		t.Fatalf("LoadTracker() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.StoreURL != "memory://" {
		t.Fatalf("StoreURL = %q, want memory://", cfg.StoreURL)
	}
	if cfg.DDMode != DDModeAlways {
		t.Fatalf("DDMode = %q, want always", cfg.DDMode)
	}
	if cfg.SolverTimeout() != 20*time.Second {
		t.Fatalf("SolverTimeout = %v, want 20s", cfg.SolverTimeout())
	}
	if cfg.SolverClub != "bbohelper" {
		t.Fatalf("SolverClub = %q", cfg.SolverClub)
	}
}

func TestLoadTrackerOverrides(t *testing.T) {
	t.Setenv("STORE_URL", "sqlite:///tmp/dd.db")
	t.Setenv("DD_MODE", "ondemand")
	t.Setenv("SOLVER_TIMEOUT_MS", "1500")
	t.Setenv("EVENT_BUFFER", "10")

	cfg, err := LoadTracker()
	if err != nil {
		t.Fatalf("LoadTracker() error = %v", err)
	}
	if cfg.StoreURL != "sqlite:///tmp/dd.db" || cfg.DDMode != DDModeOnDemand {
		t.Fatalf("unexpected tracker config: %+v", cfg)
	}
	if cfg.SolverTimeout() != 1500*time.Millisecond {
		t.Fatalf("SolverTimeout = %v", cfg.SolverTimeout())
	}
	if cfg.EventBuffer != 10 {
		t.Fatalf("EventBuffer = %d, want 10", cfg.EventBuffer)
	}
}

func TestLoadTrackerRejectsUnknownMode(t *testing.T) {
	t.Setenv("DD_MODE", "sometimes")

	if _, err := LoadTracker(); err == nil {
		t.Fatal("LoadTracker() expected error, got nil")
	}
}

func TestLoadTrackerRejectsBadNumber(t *testing.T) {
	t.Setenv("FEED_BUFFER", "lots")

	if _, err := LoadTracker(); err == nil {
		t.Fatal("LoadTracker() expected error, got nil")
	}
}
