package config

import "time"

// CacheConfig defines settings for the response cache middleware used on
// the JSON statistics endpoints.  When Enabled is false or no Redis client
// is configured, caching is disabled.  TTL bounds how stale a cached
// aggregate may get; writes that change aggregates invalidate the whole
// Prefix namespace.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	KeyStrategy  string // "route" or "route_query"
	Prefix       string
	MaxBodyBytes int
}

func loadCacheConfig(e *env) CacheConfig {
	return CacheConfig{
		Enabled:      e.boolean("CACHE_ENABLED", true),
		TTL:          e.duration("CACHE_TTL", 30*time.Second),
		KeyStrategy:  e.str("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       e.str("CACHE_PREFIX", "stations:cache"),
		MaxBodyBytes: e.integer("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
