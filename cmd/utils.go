package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"echochat/internal/auth"

	"github.com/joho/godotenv"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		if err := godotenv.Load(); err == nil {
			log.Printf("loaded env from .env")
		} else {
			log.Printf("no env file specified, using os.Environ only")
		}
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

const (
	testUsername = "test"
	testPassword = "test123"
)

// SeedTestUser registers the development test account unless it already exists.
func SeedTestUser(ctx context.Context, credentials *auth.Credentials) error {
	userId, err := credentials.Register(ctx, testUsername, testPassword)
	if errors.Is(err, auth.ErrDuplicateUsername) {
		slog.Info("test user already exists", "username", testUsername)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error creating test user: %w", err)
	}

	slog.Info("created test user", "username", testUsername, "user_id", userId)
	return nil
}
