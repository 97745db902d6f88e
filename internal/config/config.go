package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	Env         string // "development" or "production"
	LogLevel    string
	DatabaseURL string // empty keeps match results in memory

	// AllowedOrigins are websocket origin patterns, e.g. "localhost:*".
	AllowedOrigins []string

	WriteTimeout time.Duration
	PingInterval time.Duration
	PongTimeout  time.Duration // a ping not answered within this drops the connection
	OutboxSize   int
	ResultsLimit int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getenvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads .env files (when present) into the environment and builds the config.
// Variables already set in the environment win over .env.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	return Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		Env:            getenv("APP_ENV", "development"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AllowedOrigins: getenvList("ALLOWED_ORIGINS"),
		WriteTimeout:   getenvDuration("WRITE_TIMEOUT", 3*time.Second),
		PingInterval:   getenvDuration("PING_INTERVAL", 25*time.Second),
		PongTimeout:    getenvDuration("PONG_TIMEOUT", 10*time.Second),
		OutboxSize:     getenvInt("OUTBOX_SIZE", 32),
		ResultsLimit:   getenvInt("RESULTS_LIMIT", 20),
	}, nil
}

func (c Config) IsProduction() bool { return c.Env == "production" }
