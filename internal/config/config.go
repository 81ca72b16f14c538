package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	EventsChannel     string
	JWTSecret         string
	JWTTTL            time.Duration
	AuthRequired      bool
	DashboardCacheTTL time.Duration
	SnapshotSchedule  string
	SnapshotEnabled   bool
	SeedEnabled       bool
	SeedToken         string
	MessageRateLimit  int
	QuoteSeed         int64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STUDYBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Studyboard API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.channel", "studyboard:messages")
	v.SetDefault("jwt.ttl", "12h")
	v.SetDefault("auth.required", false)
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("snapshot.schedule", "0 2 * * 1")
	v.SetDefault("snapshot.enabled", true)
	v.SetDefault("seed.enabled", false)
	v.SetDefault("messages.rate_limit", 30)
	v.SetDefault("quote.seed", 0)

	cacheTTL, err := parseDuration(v.GetString("dashboard.cache_ttl"), "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	jwtTTL, err := parseDuration(v.GetString("jwt.ttl"), "12h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		EventsChannel:     v.GetString("events.channel"),
		JWTSecret:         v.GetString("jwt.secret"),
		JWTTTL:            jwtTTL,
		AuthRequired:      v.GetBool("auth.required"),
		DashboardCacheTTL: cacheTTL,
		SnapshotSchedule:  v.GetString("snapshot.schedule"),
		SnapshotEnabled:   v.GetBool("snapshot.enabled"),
		SeedEnabled:       v.GetBool("seed.enabled"),
		SeedToken:         v.GetString("seed.token"),
		MessageRateLimit:  v.GetInt("messages.rate_limit"),
		QuoteSeed:         v.GetInt64("quote.seed"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SeedEnabled && cfg.SeedToken == "" {
		return Config{}, fmt.Errorf("seed token must be provided when seeding is enabled")
	}

	if cfg.MessageRateLimit <= 0 {
		cfg.MessageRateLimit = 30
	}

	return cfg, nil
}

func parseDuration(value, fallback string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	return time.ParseDuration(value)
}
