package config

// Redis backs the response cache and the distributed rate limiter.  Both
// degrade gracefully when the server is unreachable at startup: caching is
// disabled and rate limiting falls back to an in-process limiter.

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for the optional Redis server.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// loadRedisConfig reads REDIS_HOST/REDIS_PORT or the REDIS_ADDR shorthand
// (host and port win when both are set), REDIS_PASSWORD, REDIS_DB and
// REDIS_TLS.
func loadRedisConfig(e *env) RedisConfig {
	addr := e.str("REDIS_ADDR", "localhost:6379")
	if host, port := e.str("REDIS_HOST", ""), e.str("REDIS_PORT", ""); host != "" && port != "" {
		addr = host + ":" + port
	}
	return RedisConfig{
		Enabled:  e.boolean("REDIS_ENABLED", true),
		Addr:     addr,
		Password: e.str("REDIS_PASSWORD", ""),
		DB:       e.integer("REDIS_DB", 0),
		TLS:      e.boolean("REDIS_TLS", false),
	}
}

// NewRedisClient instantiates a Redis client and pings it with a short
// timeout.  It returns an error when Redis is disabled or unreachable;
// callers should then run without it.
func NewRedisClient(ctx context.Context, rc RedisConfig) (*redis.Client, error) {
	if !rc.Enabled {
		return nil, fmt.Errorf("redis disabled")
	}
	var tlsConf *tls.Config
	if rc.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      rc.Addr,
		Password:  rc.Password,
		DB:        rc.DB,
		TLSConfig: tlsConf,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", rc.Addr, err)
	}
	return client, nil
}
