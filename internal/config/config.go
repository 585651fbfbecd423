// Package config loads the process configuration from the environment
// once at startup. Nothing in here is read again after Load returns; the
// resulting Config is passed explicitly to everything that needs it.
package config

import (
	"errors"
	"os"
)

// Defaults for the seeded accounts. Overridable via ADMIN_PASSWORD and
// USER_PASSWORD for anything beyond local development.
const (
	DefaultAdminPassword = "admin"
	DefaultUserPassword  = "user"

	defaultDatabaseURL = "./data/backoffice.db"
	defaultAddr        = ":8080"
)

// ErrMissingTokenSecret is returned when TOKEN_SECRET is unset or empty.
// The server refuses to start without a signing key.
var ErrMissingTokenSecret = errors.New("config: TOKEN_SECRET is not set")

type Config struct {
	// DatabaseURL is a sqlite path or DSN.
	DatabaseURL string
	// TokenSecret signs session tokens. Required.
	TokenSecret []byte
	// Addr is the listen address for the HTTP server.
	Addr string
	// DevMode relaxes error redaction and enables verbose logging.
	// Set APP_ENV=development to turn it on.
	DevMode bool

	AdminPassword string
	UserPassword  string

	// StaticDir holds the built browser UI, served at /.
	StaticDir string
}

// Load reads the environment. It fails only when a required value is
// absent; everything else has a development default.
func Load() (*Config, error) {
	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		return nil, ErrMissingTokenSecret
	}

	cfg := &Config{
		DatabaseURL:   envOr("DATABASE_URL", defaultDatabaseURL),
		TokenSecret:   []byte(secret),
		Addr:          defaultAddr,
		DevMode:       os.Getenv("APP_ENV") == "development",
		AdminPassword: envOr("ADMIN_PASSWORD", DefaultAdminPassword),
		UserPassword:  envOr("USER_PASSWORD", DefaultUserPassword),
		StaticDir:     envOr("STATIC_DIR", "./static"),
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
