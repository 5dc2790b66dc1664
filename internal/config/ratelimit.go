package config

import "time"

// RateLimitConfig configures the token bucket applied to the login,
// registration and review submission endpoints.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
}

func loadRateLimitConfig(e *env) RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        e.boolean("RATE_LIMIT_ENABLED", true),
		Capacity:       e.integer("RATE_LIMIT_CAPACITY", 10),
		RefillTokens:   e.integer("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: e.duration("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
		TTL:            e.duration("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    e.str("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         e.str("RATE_LIMIT_PREFIX", "stations:rl"),
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}
