// Package config loads process-wide configuration once at startup.
//
// All settings come from environment variables (optionally seeded from a
// .env file). The resulting struct is passed by value into constructors;
// nothing reads the environment after startup.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// defaultTokenSecret is the compiled-in fallback signing key used when
// FD_JWT_SECRET is unset. Kept for compatibility with existing deployments;
// any real installation should set its own secret.
const defaultTokenSecret = "your-secret-key"

type Config struct {
	Addr        string `env:"FD_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	TokenSecret string        `env:"FD_JWT_SECRET"`
	TokenTTL    time.Duration `env:"FD_TOKEN_TTL" envDefault:"24h"`

	// Storage selects the payload backend: "minio" or "disk".
	Storage  string `env:"FD_STORAGE" envDefault:"minio"`
	DiskRoot string `env:"FD_DISK_ROOT" envDefault:"./data/files"`

	S3Endpoint  string `env:"FD_S3_ENDPOINT"`
	S3AccessKey string `env:"FD_S3_ACCESS_KEY"`
	S3SecretKey string `env:"FD_S3_SECRET_KEY"`
	Bucket      string `env:"FD_BUCKET"`

	Version string `env:"FD_VERSION" envDefault:"dev"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.TokenSecret == "" {
		cfg.TokenSecret = defaultTokenSecret
	}

	return cfg, nil
}
