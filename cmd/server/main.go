package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnect_go/internal/config"
	"devconnect_go/internal/httpserver"
	"devconnect_go/internal/security"
	"devconnect_go/internal/store/postgres"
	"devconnect_go/internal/store/sqlite"
	"devconnect_go/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database and repositories
	var db *sql.DB
	var repos httpserver.Repos

	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		repos = httpserver.Repos{
			Users:    postgres.NewUserRepo(db),
			Requests: postgres.NewRequestRepo(db),
			Messages: postgres.NewMessageRepo(db),
		}
	default:
		db, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		if err := sqlite.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		repos = httpserver.Repos{
			Users:    sqlite.NewUserRepo(db),
			Requests: sqlite.NewRequestRepo(db),
			Messages: sqlite.NewMessageRepo(db),
		}
	}
	defer db.Close()

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)

	// Live connection tracking
	hub := ws.NewHub()
	registry := ws.NewRegistry(hub, repos.Requests, repos.Users, cfg.PresenceGrace)

	// Build HTTP router
	router := httpserver.NewRouter(cfg, repos, hub, registry, tokenSvc, passwordHasher)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Starting devconnect server on %s\n", cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
