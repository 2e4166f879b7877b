package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	HTTPTimeout      time.Duration
	LogLevel         slog.Level
	MaxUploadBytes   int64
	SessionTTL       time.Duration
	GroupsFile       string
	TimestampColumns []string
}

// FromEnv reads settings from the environment. A .env file in the working
// directory is loaded first when present; real env vars take precedence.
func FromEnv() Config {
	_ = godotenv.Load()

	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil && d > 0 {
			to = d
		}
	}
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return Config{
		Port:             envOr("PORT", "8080"),
		HTTPTimeout:      to,
		LogLevel:         lvl,
		MaxUploadBytes:   int64(clamp(envInt("MAX_UPLOAD_MB", 32), 1, 1024)) << 20,
		SessionTTL:       time.Duration(clamp(envInt("SESSION_TTL_MINUTES", 120), 1, 7*24*60)) * time.Minute,
		GroupsFile:       os.Getenv("GROUPS_FILE"),
		TimestampColumns: csvList(envOr("TIMESTAMP_COLUMNS", "CreatedOn")),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func csvList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
