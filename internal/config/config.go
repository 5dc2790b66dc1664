package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Default administrator credentials seeded on first start when the
// corresponding variables are unset.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminUsername = "superadmin"
	DefaultAdminPassword = "admin123"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env          string        // application environment (e.g. "dev", "prod")
	Port         string        // HTTP port to listen on
	DBUser       string        // database username
	DBPass       string        // database password (optional)
	DBHost       string        // database host address
	DBPort       string        // database port number
	DBName       string        // database name
	JWTSecret    string        // secret used to sign session tokens
	SessionTTL   time.Duration // session token lifetime (ACCESS_TOKEN_TTL_MIN)
	BcryptCost   int           // bcrypt cost for password hashing
	CookieSecure bool          // mark the session cookie Secure
	StaticDir    string        // directory served under /static
	LogLevel     string        // logrus level name
	LogFormat    string        // "text" or "json"

	AdminEmail    string
	AdminUsername string
	AdminPassword string

	Storage   StorageConfig
	Queue     QueueConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(string) (string, bool)

// Load reads an optional .env file and then the process environment.
// Missing required variables are fatal.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not read .env file")
	}
	cfg, err := LoadFrom(os.LookupEnv)
	if err != nil {
		logrus.Fatal(err)
	}
	return cfg
}

// LoadFrom builds a Config from the given lookup.  It returns an error
// naming the first required variable that is missing or malformed.
func LoadFrom(lookup LookupFunc) (Config, error) {
	e := env{lookup: lookup}
	cfg := Config{
		Env:          e.str("APP_ENV", "dev"),
		Port:         e.str("APP_PORT", "8000"),
		DBUser:       e.must("DB_USER"),
		DBPass:       e.str("DB_PASS", ""),
		DBHost:       e.str("DB_HOST", "localhost"),
		DBPort:       e.str("DB_PORT", "3306"),
		DBName:       e.must("DB_NAME"),
		JWTSecret:    e.must("JWT_SECRET"),
		SessionTTL:   time.Duration(e.integer("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		BcryptCost:   e.integer("BCRYPT_COST", 12),
		CookieSecure: e.boolean("COOKIE_SECURE", false),
		StaticDir:    e.str("STATIC_DIR", "frontend/static"),
		LogLevel:     e.str("LOG_LEVEL", "info"),
		LogFormat:    e.str("LOG_FORMAT", "text"),

		AdminEmail:    e.str("ADMIN_EMAIL", DefaultAdminEmail),
		AdminUsername: e.str("ADMIN_USERNAME", DefaultAdminUsername),
		AdminPassword: e.str("ADMIN_PASSWORD", DefaultAdminPassword),
	}
	cfg.Storage = loadStorageConfig(&e)
	cfg.Queue = loadQueueConfig(&e)
	cfg.Redis = loadRedisConfig(&e)
	cfg.Cache = loadCacheConfig(&e)
	cfg.RateLimit = loadRateLimitConfig(&e)
	if e.err != nil {
		return Config{}, e.err
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_TTL_MIN must be positive")
	}
	return cfg, nil
}

// UsesDefaultAdminPassword reports whether the seeded administrator
// would get the well-known default password.
func (c Config) UsesDefaultAdminPassword() bool {
	return c.AdminPassword == DefaultAdminPassword
}

// env wraps a lookup and records the first error it hits, so callers can
// read every variable and check once.
type env struct {
	lookup LookupFunc
	err    error
}

func (e *env) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// must retrieves the value of a required variable.
func (e *env) must(key string) string {
	v, ok := e.get(key)
	if !ok && e.err == nil {
		e.err = fmt.Errorf("missing required env var: %s", key)
	}
	return v
}

func (e *env) str(key, def string) string {
	if v, ok := e.get(key); ok {
		return v
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("invalid int for %s: %q", key, v)
		}
		return def
	}
	return n
}

func (e *env) boolean(key string, def bool) bool {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return def
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
