package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName      string `env:"DB_NAME" envDefault:"crm_timesheet_db"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"crm_timesheet.db"`

	JWTSecret                string        `env:"SECRET_KEY" envDefault:"dev-secret"`
	JWTIssuer                string        `env:"JWT_ISSUER" envDefault:"crm-timesheet"`
	JWTAccessTTL             time.Duration `env:"JWT_ACCESS_TTL" envDefault:"2h"`
	RevokeOnCredentialChange bool          `env:"AUTH_REVOKE_ON_CREDENTIAL_CHANGE" envDefault:"false"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV" envDefault:"false"`

	SeedAdmin     bool   `env:"SEED_ADMIN" envDefault:"true"`
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}

// Load reads configuration from the environment, picking up a local .env file when present.
func Load() (*Config, error) {
	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTAccessTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TTL must be positive, got %s", cfg.JWTAccessTTL)
	}
	return &cfg, nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}
