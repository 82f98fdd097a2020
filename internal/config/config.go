package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	SecretKey      string        `env:"SECRET_KEY,notEmpty"`
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"chatbot.db"`
	Port           int           `env:"PORT" envDefault:"5000"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	SecureCookies  bool          `env:"SECURE_COOKIES" envDefault:"false"`
	CorsOrigins    []string      `env:"CORS_ORIGINS" envSeparator:","`
	SeedTestUser   bool          `env:"SEED_TEST_USER" envDefault:"false"`
	LogFile        string        `env:"LOG_FILE"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %v", cfg.SessionTTL)
	}

	return &cfg, nil
}
