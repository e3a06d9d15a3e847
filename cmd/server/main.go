package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/EDU-PR/edudash-presence/internal/api"
	"github.com/EDU-PR/edudash-presence/internal/badge"
	"github.com/EDU-PR/edudash-presence/internal/config"
	"github.com/EDU-PR/edudash-presence/internal/database"
	"github.com/EDU-PR/edudash-presence/internal/feed"
	"github.com/EDU-PR/edudash-presence/internal/repositories"
	"github.com/EDU-PR/edudash-presence/internal/services"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	logger := log.New(os.Stdout, "presence: ", log.LstdFlags)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database connections
	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to create postgres pool: %v", err)
	}
	defer postgresPool.Close()

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatalf("Failed to create redis client: %v", err)
	}
	defer redisClient.Close()

	presenceRepo := repositories.NewPostgresPresenceRepository(postgresPool)
	badgeRepo := repositories.NewRedisBadgeRepository(redisClient)
	presenceFeed := feed.NewRedisFeed(redisClient, logger)

	presenceService := services.NewPresenceService(presenceRepo, presenceFeed, logger)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)

	badgeManager := badge.NewManager(badgeRepo, logger)
	badgeManager.Run()
	defer badgeManager.Stop()

	apiServer := api.NewServer(logger, presenceService, tokenService, badgeManager, cfg)

	// Initialize HTTP Server
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Mount("/api", apiServer.Routes())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Printf("Starting server on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Server stopped gracefully")
}
