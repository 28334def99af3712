// Package config builds the process configuration from environment
// variables so main stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Schema   Schema
	Log      Log
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	AdminToken      string
	ShutdownTimeout time.Duration
}

// Postgres captures the database connection settings. An empty URL selects
// the in-memory stores.
type Postgres struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Redis captures the cache connection settings. An empty URL disables the
// definitions cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Schema captures field registry settings.
type Schema struct {
	// SeedPath points at the YAML file of system field definitions loaded
	// at boot. Empty skips seeding.
	SeedPath string
	CacheTTL time.Duration
}

// Log captures logging settings.
type Log struct {
	Level string
}

// FromEnv builds a Config from environment variables, applying defaults for
// anything unset.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("SITEGUARD_ADDR", ":8080"),
			AdminToken:      os.Getenv("SITEGUARD_ADMIN_TOKEN"),
			ShutdownTimeout: envDuration("SITEGUARD_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: Postgres{
			URL:             os.Getenv("SITEGUARD_POSTGRES_URL"),
			MaxOpenConns:    envInt("SITEGUARD_POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("SITEGUARD_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("SITEGUARD_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: Redis{
			URL:          os.Getenv("SITEGUARD_REDIS_URL"),
			PoolSize:     envInt("SITEGUARD_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("SITEGUARD_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("SITEGUARD_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("SITEGUARD_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("SITEGUARD_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Schema: Schema{
			SeedPath: os.Getenv("SITEGUARD_SEED_PATH"),
			CacheTTL: envDuration("SITEGUARD_SCHEMA_CACHE_TTL", 5*time.Minute),
		},
		Log: Log{
			Level: envString("SITEGUARD_LOG_LEVEL", "info"),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
