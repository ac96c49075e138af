// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs to start. Values come from
// FAMILY_ORGANIZER_* environment variables.
type Config struct {
	Port      string        `env:"PORT" envDefault:"8080"`
	DBPath    string        `env:"DB_PATH" envDefault:"family-organizer.db"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string        `env:"LOG_FORMAT" envDefault:"text"`
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Requests per second allowed per client IP on the auth endpoints.
	AuthRatePerSecond float64 `env:"AUTH_RATE_PER_SECOND" envDefault:"1"`
	AuthRateBurst     int     `env:"AUTH_RATE_BURST" envDefault:"10"`

	S3 S3Config `envPrefix:"S3_"`
}

// S3Config configures photo object storage. Photos are disabled when the
// bucket is empty.
type S3Config struct {
	Endpoint      string `env:"ENDPOINT"`
	Region        string `env:"REGION" envDefault:"auto"`
	Bucket        string `env:"BUCKET"`
	AccessKey     string `env:"ACCESS_KEY"`
	SecretKey     string `env:"SECRET_KEY"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

// Enabled reports whether photo storage is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "FAMILY_ORGANIZER_"}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
