package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// config is everything the server reads from the environment at startup.
type config struct {
	Port          string
	DBURL         string
	OpenAIBaseURL string
	DefaultTZ     *time.Location
	GinMode       string
	AWSRegion     string // optional; enables photo recognition
}

// loadConfig reads .env (if present) and then the process environment.
// A missing .env is normal in production where variables come from the host.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[loadConfig] ignoring unreadable .env: %v", err)
	}

	cfg := config{
		Port:          getEnv("PORT", "3000"),
		DBURL:         os.Getenv("DB_URL"),
		OpenAIBaseURL: strings.TrimRight(getEnv("OPENAI_BASE_URL", "https://api.openai.com"), "/"),
		GinMode:       getEnv("GIN_MODE", "release"),
		AWSRegion:     os.Getenv("AWS_REGION"),
	}
	if cfg.DBURL == "" {
		return cfg, fmt.Errorf("DB_URL is required")
	}

	tz := getEnv("DEFAULT_TZ", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return cfg, fmt.Errorf("invalid DEFAULT_TZ %q: %w", tz, err)
	}
	cfg.DefaultTZ = loc
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
