package config

import (
	"os"
	"time"
)

// RateLimitConfig defines the thresholds of the abuse guard. When
// Enabled is false the middleware is a no-op.
type RateLimitConfig struct {
	Enabled       bool
	Limit         int           // max requests per window, per identifier
	Window        time.Duration // sliding window length
	EscalateAfter int           // violations before the identifier is blocked
	BlockFor      time.Duration // block duration once escalated
	Prefix        string        // redis key prefix
}

// LoadRateLimitConfig reads the guard settings from the environment,
// falling back to 60 requests per minute with a 1h block after 5
// violations.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:       envBool("RATE_LIMIT_ENABLED", true),
		Limit:         envInt("RATE_LIMIT_MAX_REQUESTS", 60),
		Window:        envDur("RATE_LIMIT_WINDOW", time.Minute),
		EscalateAfter: envInt("RATE_LIMIT_ESCALATE_AFTER", 5),
		BlockFor:      envDur("RATE_LIMIT_BLOCK_FOR", time.Hour),
		Prefix:        getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.EscalateAfter < 1 {
		cfg.EscalateAfter = 1
	}
	if cfg.BlockFor <= 0 {
		cfg.BlockFor = time.Hour
	}
	return cfg
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
