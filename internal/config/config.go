package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Defaults for the presence tunables. The grace periods are independent
// constants, not derived from the heartbeat interval: an "away" client may
// be unable to heartbeat at all while backgrounded, so its grace period is
// much longer than a missed-heartbeat multiple.
const (
	DefaultHeartbeatInterval      = 30 * time.Second
	DefaultAwayTimeout            = 5 * time.Minute
	DefaultOnlineGracePeriod      = 2 * time.Minute
	DefaultAwayGracePeriod        = 30 * time.Minute
	DefaultBackgroundWriteTimeout = 3 * time.Second
	DefaultWriteTimeout           = 5 * time.Second
)

type Config struct {
	ServerPort  string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	JWTExpiry   time.Duration

	HeartbeatInterval      time.Duration
	AwayTimeout            time.Duration
	OnlineGracePeriod      time.Duration
	AwayGracePeriod        time.Duration
	BackgroundWriteTimeout time.Duration
	WriteTimeout           time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	var err error
	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.HeartbeatInterval, err = getDuration("HEARTBEAT_INTERVAL", DefaultHeartbeatInterval); err != nil {
		return nil, err
	}
	if cfg.AwayTimeout, err = getDuration("AWAY_TIMEOUT", DefaultAwayTimeout); err != nil {
		return nil, err
	}
	if cfg.OnlineGracePeriod, err = getDuration("ONLINE_GRACE_PERIOD", DefaultOnlineGracePeriod); err != nil {
		return nil, err
	}
	if cfg.AwayGracePeriod, err = getDuration("AWAY_GRACE_PERIOD", DefaultAwayGracePeriod); err != nil {
		return nil, err
	}
	if cfg.BackgroundWriteTimeout, err = getDuration("BACKGROUND_WRITE_TIMEOUT", DefaultBackgroundWriteTimeout); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = getDuration("WRITE_TIMEOUT", DefaultWriteTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
