package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// Config holds all configurable game and server parameters.
type Config struct {
	WSPort        int    `json:"ws_port"`
	MaxNameLength int    `json:"max_name_length"`
	DatabaseURL   string `json:"database_url"`
	AuthBaseURL   string `json:"auth_base_url"`

	// MemorizePrepSec is the preparation interval after dealing, during
	// which no actions are accepted.
	MemorizePrepSec int `json:"memorize_prep_sec"`
	// MemorizeCountdownSec is the window in which each player may inspect
	// up to MemorizePeekBudget of their own slots.
	MemorizeCountdownSec int `json:"memorize_countdown_sec"`
	MemorizePeekBudget   int `json:"memorize_peek_budget"`

	// TurnLimitSec is the per-turn countdown; 0 disables turn timers.
	TurnLimitSec int `json:"turn_limit_sec"`

	// PenaltyDurationMS is the real-time penalty window during which all
	// other timers are frozen. PenaltyDrawCount cards are appended to the
	// offending hand.
	PenaltyDurationMS int `json:"penalty_duration_ms"`
	PenaltyDrawCount  int `json:"penalty_draw_count"`

	// PowerRevealMS is how long a Jack or Queen reveal stays visible.
	PowerRevealMS int `json:"power_reveal_ms"`

	// SwapRequiresOccupied selects the swap-into-hand targeting rule:
	// false = any of the original dealt slots (reference behavior),
	// true = any currently occupied slot.
	SwapRequiresOccupied bool `json:"swap_requires_occupied"`

	// MatchTargetScore ends the match once a cumulative score reaches it;
	// 0 plays rounds indefinitely.
	MatchTargetScore int `json:"match_target_score"`

	ReconnectTimeoutSec int `json:"reconnect_timeout_sec"`
}

// Defaults returns a Config with the standard table rules.
func Defaults() *Config {
	return &Config{
		WSPort:               8080,
		MaxNameLength:        24,
		MemorizePrepSec:      3,
		MemorizeCountdownSec: 10,
		MemorizePeekBudget:   2,
		TurnLimitSec:         30,
		PenaltyDurationMS:    5000,
		PenaltyDrawCount:     2,
		PowerRevealMS:        5000,
		SwapRequiresOccupied: false,
		MatchTargetScore:     100,
		ReconnectTimeoutSec:  120,
	}
}

// Load reads configuration from an optional config.json file, then applies
// environment variable overrides. Fields not set in either source retain
// their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")
	overrideInt(&cfg.MemorizePrepSec, "MEMORIZE_PREP_SEC")
	overrideInt(&cfg.MemorizeCountdownSec, "MEMORIZE_COUNTDOWN_SEC")
	overrideInt(&cfg.MemorizePeekBudget, "MEMORIZE_PEEK_BUDGET")
	overrideInt(&cfg.TurnLimitSec, "TURN_LIMIT_SEC")
	overrideInt(&cfg.PenaltyDurationMS, "PENALTY_DURATION_MS")
	overrideInt(&cfg.PenaltyDrawCount, "PENALTY_DRAW_COUNT")
	overrideInt(&cfg.PowerRevealMS, "POWER_REVEAL_MS")
	overrideBool(&cfg.SwapRequiresOccupied, "SWAP_REQUIRES_OCCUPIED")
	overrideInt(&cfg.MatchTargetScore, "MATCH_TARGET_SCORE")
	overrideInt(&cfg.ReconnectTimeoutSec, "RECONNECT_TIMEOUT_SEC")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func overrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*field = b
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}
