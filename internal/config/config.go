// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// StorageBackend is "postgres" or "memory".
	StorageBackend string

	// DatabaseURL is the Postgres connection string. Required for the
	// postgres backend.
	DatabaseURL string

	// MigrateOnStart applies pending goose migrations before serving.
	MigrateOnStart bool

	// JWTSecret is the HMAC key bearer tokens are signed with. Required.
	JWTSecret string

	// JWTIssuer, when set, must match the iss claim of every token.
	JWTIssuer string

	// ConfirmationPrefix starts every confirmation number.
	ConfirmationPrefix string

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Empty variables are treated as unset. Returns an error listing any
// required variables that are not set.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "http://localhost:5173")
	v.SetDefault("storage_backend", BackendPostgres)
	v.SetDefault("migrate_on_start", true)
	v.SetDefault("confirmation_prefix", "HM")
	v.SetDefault("max_body_bytes", 1<<20)
	v.AutomaticEnv()

	cfg := Config{
		Port:               v.GetString("port"),
		LogLevel:           strings.ToLower(v.GetString("log_level")),
		CORSOrigins:        splitCSV(v.GetString("cors_origins")),
		StorageBackend:     strings.ToLower(v.GetString("storage_backend")),
		DatabaseURL:        v.GetString("database_url"),
		MigrateOnStart:     v.GetBool("migrate_on_start"),
		JWTSecret:          v.GetString("jwt_secret"),
		JWTIssuer:          v.GetString("jwt_issuer"),
		ConfirmationPrefix: v.GetString("confirmation_prefix"),
		MaxBodyBytes:       v.GetInt64("max_body_bytes"),
	}

	switch cfg.StorageBackend {
	case BackendPostgres, BackendMemory:
	default:
		return Config{}, fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, cfg.StorageBackend)
	}
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}

	var missing []string
	if cfg.StorageBackend == BackendPostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
