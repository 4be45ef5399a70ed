package container

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMissingDatabaseURL is returned when no database connection string was configured.
var ErrMissingDatabaseURL = errors.New("database url is required (set --database-url, SERVICE_DATABASE_URL or DATABASE_URL)")

// Options are the service settings. humacli fills them from flags and SERVICE_* env vars.
type Options struct {
	Port        int    `default:"5000"           help:"Port to listen on"                                               short:"p"`
	BaseURL     string `help:"Public base URL of short links (default http://localhost:<port>)"`
	DatabaseURL string `help:"Database connection string (postgres://, sqlite://, memory://)"                          short:"d"`
	RedisAddr   string `help:"Redis server address; empty disables caching and events"                                 short:"r"`
	CacheTTL    string `default:"24h"            help:"How long resolved mappings stay in the Redis cache"`
	LogFormat   string `default:"console"        help:"Log encoding: console or json"`
	StaticDir   string `default:"frontend/build" help:"Directory of the built frontend"`
	ServeStatic bool   `help:"Serve the built frontend from the static directory"`
	Migrate     bool   `default:"true"           help:"Apply database migrations on startup"`
}

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// ApplyEnvFallbacks honors the plain environment names (PORT, BASE_URL,
// DATABASE_URL, REDIS_ADDR, LOG_FORMAT, NODE_ENV) when the matching
// SERVICE_* variable is not set.
func (o *Options) ApplyEnvFallbacks(lookup LookupEnv) error {
	fallback := func(serviceKey, plainKey string) (string, bool) {
		if _, ok := lookup(serviceKey); ok {
			return "", false
		}

		v, ok := lookup(plainKey)
		if !ok || v == "" {
			return "", false
		}

		return v, true
	}

	if v, ok := fallback("SERVICE_PORT", "PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}

		o.Port = port
	}

	if v, ok := fallback("SERVICE_BASE_URL", "BASE_URL"); ok && o.BaseURL == "" {
		o.BaseURL = v
	}

	if v, ok := fallback("SERVICE_DATABASE_URL", "DATABASE_URL"); ok && o.DatabaseURL == "" {
		o.DatabaseURL = v
	}

	if v, ok := fallback("SERVICE_REDIS_ADDR", "REDIS_ADDR"); ok && o.RedisAddr == "" {
		o.RedisAddr = v
	}

	if v, ok := fallback("SERVICE_LOG_FORMAT", "LOG_FORMAT"); ok {
		o.LogFormat = v
	}

	if v, ok := fallback("SERVICE_SERVE_STATIC", "NODE_ENV"); ok && v == "production" {
		o.ServeStatic = true
	}

	return nil
}

// Validate reports settings the service cannot start without.
func (o *Options) Validate() error {
	if o.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}

	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}

	if _, err := o.CacheDuration(); err != nil {
		return err
	}

	return nil
}

// ResolvedBaseURL returns the configured base URL without a trailing slash,
// or http://localhost:<port> when none was set.
func (o *Options) ResolvedBaseURL() string {
	if o.BaseURL == "" {
		return fmt.Sprintf("http://localhost:%d", o.Port)
	}

	return strings.TrimRight(o.BaseURL, "/")
}

// CacheDuration parses CacheTTL.
func (o *Options) CacheDuration() (time.Duration, error) {
	if o.CacheTTL == "" {
		return 0, nil
	}

	ttl, err := time.ParseDuration(o.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache ttl %q: %w", o.CacheTTL, err)
	}

	if ttl < 0 {
		return 0, fmt.Errorf("invalid cache ttl %q: must not be negative", o.CacheTTL)
	}

	return ttl, nil
}
