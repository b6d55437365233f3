// Package config loads the process configuration from the environment.
//
// A local .env file is read first when present (development convenience);
// real environment variables always win. The typed struct is decoded with
// envconfig so defaults and required fields live in one place.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port   int    `envconfig:"PORT" default:"8080"`
	DBPath string `envconfig:"DB_PATH" default:"data/nexus.db"`

	// JWTSecret signs access tokens. Must be at least 16 characters;
	// generate with: openssl rand -hex 32
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Firebase service-account credentials for federated login: inline
	// JSON for cloud deployments, or a file path for local development.
	// Both empty disables the firebase login route's backend.
	FirebaseCredentialsJSON string `envconfig:"FIREBASE_CREDENTIALS_JSON"`
	FirebaseCredentialsFile string `envconfig:"FIREBASE_CREDENTIALS_FILE"`

	// CORSOrigins is the comma-separated list of allowed origins.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load reads .env (if any) and decodes the environment into a Config.
func Load() (*Config, error) {
	// Ignore the error: a missing .env file just means we rely on the
	// real environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}
