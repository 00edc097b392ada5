package config

import (
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.TurnLimitSec != 30 {
		t.Errorf("expected TurnLimitSec=30, got %d", cfg.TurnLimitSec)
	}
	if cfg.MemorizeCountdownSec != 10 {
		t.Errorf("expected MemorizeCountdownSec=10, got %d", cfg.MemorizeCountdownSec)
	}
	if cfg.MemorizePeekBudget != 2 {
		t.Errorf("expected MemorizePeekBudget=2, got %d", cfg.MemorizePeekBudget)
	}
	if cfg.PenaltyDrawCount != 2 {
		t.Errorf("expected PenaltyDrawCount=2, got %d", cfg.PenaltyDrawCount)
	}
	if cfg.PenaltyDurationMS != 5000 {
		t.Errorf("expected PenaltyDurationMS=5000, got %d", cfg.PenaltyDurationMS)
	}
	if cfg.SwapRequiresOccupied {
		t.Error("expected SwapRequiresOccupied=false by default")
	}
	if cfg.WSPort != 8080 {
		t.Errorf("expected WSPort=8080, got %d", cfg.WSPort)
	}
	if cfg.MaxNameLength != 24 {
		t.Errorf("expected MaxNameLength=24, got %d", cfg.MaxNameLength)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	os.Setenv("TURN_LIMIT_SEC", "15")
	os.Setenv("PENALTY_DRAW_COUNT", "3")
	os.Setenv("SWAP_REQUIRES_OCCUPIED", "true")
	os.Setenv("WS_PORT", "9090")
	defer func() {
		os.Unsetenv("TURN_LIMIT_SEC")
		os.Unsetenv("PENALTY_DRAW_COUNT")
		os.Unsetenv("SWAP_REQUIRES_OCCUPIED")
		os.Unsetenv("WS_PORT")
	}()

	cfg := Load()

	if cfg.TurnLimitSec != 15 {
		t.Errorf("expected TurnLimitSec=15 after env override, got %d", cfg.TurnLimitSec)
	}
	if cfg.PenaltyDrawCount != 3 {
		t.Errorf("expected PenaltyDrawCount=3 after env override, got %d", cfg.PenaltyDrawCount)
	}
	if !cfg.SwapRequiresOccupied {
		t.Error("expected SwapRequiresOccupied=true after env override")
	}
	if cfg.WSPort != 9090 {
		t.Errorf("expected WSPort=9090 after env override, got %d", cfg.WSPort)
	}
	// Non-overridden fields should remain default
	if cfg.MemorizeCountdownSec != 10 {
		t.Errorf("expected MemorizeCountdownSec=10 (default), got %d", cfg.MemorizeCountdownSec)
	}
}

func TestLoadWithInvalidEnv(t *testing.T) {
	os.Setenv("TURN_LIMIT_SEC", "invalid")
	defer os.Unsetenv("TURN_LIMIT_SEC")

	cfg := Load()

	// Should fall back to default when env value is invalid
	if cfg.TurnLimitSec != 30 {
		t.Errorf("expected TurnLimitSec=30 (default) with invalid env, got %d", cfg.TurnLimitSec)
	}
}
