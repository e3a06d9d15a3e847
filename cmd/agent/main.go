// Command agent runs an interactive presence client against the shared
// store and feed, standing in for a mobile host runtime. It accepts
// lifecycle commands on stdin:
//
//	fg    foreground transition (go online)
//	bg    background transition (go away)
//	act   record user activity
//	who   print the local presence snapshot
//	quit  final offline write and exit
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/EDU-PR/edudash-presence/internal/config"
	"github.com/EDU-PR/edudash-presence/internal/database"
	"github.com/EDU-PR/edudash-presence/internal/feed"
	"github.com/EDU-PR/edudash-presence/internal/presence"
	"github.com/EDU-PR/edudash-presence/internal/repositories"
)

func main() {
	userFlag := flag.String("user", "", "user id to track (defaults to a random id)")
	flag.Parse()

	ctx := context.Background()

	godotenv.Load()

	logger := log.New(os.Stderr, "agent: ", log.LstdFlags)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	userID := uuid.New()
	if *userFlag != "" {
		userID, err = uuid.Parse(*userFlag)
		if err != nil {
			logger.Fatalf("Invalid user id: %v", err)
		}
	}

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

	tracker := presence.NewTracker(
		userID,
		repositories.NewPostgresPresenceRepository(postgresPool),
		feed.NewRedisFeed(redisClient, logger),
		logger,
		presence.Options{
			HeartbeatInterval:      cfg.HeartbeatInterval,
			AwayTimeout:            cfg.AwayTimeout,
			OnlineGracePeriod:      cfg.OnlineGracePeriod,
			AwayGracePeriod:        cfg.AwayGracePeriod,
			BackgroundWriteTimeout: cfg.BackgroundWriteTimeout,
			WriteTimeout:           cfg.WriteTimeout,
		},
	)

	tracker.Start(ctx)
	tracker.SetAppState(ctx, presence.AppStateActive)
	logger.Printf("Tracking presence for user %s", userID)

	// Final offline write on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		tracker.Stop()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch scanner.Text() {
		case "fg":
			tracker.SetAppState(ctx, presence.AppStateActive)
			fmt.Println("status:", tracker.MyStatus())
		case "bg":
			tracker.SetAppState(ctx, presence.AppStateBackground)
			fmt.Println("status:", tracker.MyStatus())
		case "act":
			tracker.RecordActivity()
		case "who":
			for id, rec := range tracker.Snapshot() {
				fmt.Printf("%s  %-8s  %s\n", id, rec.Status, tracker.LastSeenText(id))
			}
		case "quit":
			tracker.Stop()
			return
		case "":
		default:
			fmt.Println("commands: fg, bg, act, who, quit")
		}
	}

	tracker.Stop()
}
