package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"echochat/cmd"
	"echochat/internal/api"
	"echochat/internal/auth"
	"echochat/internal/chat"
	"echochat/internal/config"
	"echochat/internal/database"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"
)

func createDatabase(databaseURL string) *gorm.DB {
	db, err := database.NewDatabase(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.GetMigrator(db).Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func createServer(cfg *config.Config, credentials *auth.Credentials, sessions *auth.SessionManager, chatService *chat.Service) *http.Server {
	r := chi.NewRouter()

	if len(cfg.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	secret := []byte(cfg.SecretKey)

	pages, err := api.NewPageService(credentials, sessions, api.NewFlash(secret, cfg.SecureCookies))
	if err != nil {
		log.Fatalf("could not load page templates: %v", err)
	}

	api.NewChatService(chatService, credentials, sessions).AddRoutes(r)
	pages.AddRoutes(r)

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
}

func main() {
	cmd.LoadEnvFile()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()

		log.SetOutput(io.MultiWriter(f, os.Stderr))
	}

	slog.Info("starting server", "port", cfg.Port, "session_ttl", cfg.SessionTTL, "secure_cookies", cfg.SecureCookies)

	db := createDatabase(cfg.DatabaseURL)
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	credentials := auth.NewCredentials(db)
	sessions := auth.NewSessionManager(db, []byte(cfg.SecretKey), cfg.SessionTTL, cfg.SecureCookies)

	if cfg.SeedTestUser {
		if err := cmd.SeedTestUser(context.Background(), credentials); err != nil {
			log.Fatalf("Failed to seed test user: %v", err)
		}
	}

	if removed, err := sessions.PurgeExpired(context.Background()); err != nil {
		slog.Warn("error purging expired sessions", "error", err)
	} else if removed > 0 {
		slog.Info("purged expired sessions", "count", removed)
	}

	server := createServer(cfg, credentials, sessions, chat.NewService(db, chat.Echo{}))

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	slog.Info("server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	slog.Info("server stopped")
}
