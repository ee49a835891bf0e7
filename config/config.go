package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config keeps runtime settings for the service.
type Config struct {
	Port            string
	MongoURI        string
	MongoDBName     string
	CassandraHost   string
	JWTSecret       string
	ResyncInterval  time.Duration
	RetentionPeriod time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:            strings.TrimSpace(os.Getenv("TASKBOARD_PORT")),
		MongoURI:        strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDBName:     strings.TrimSpace(os.Getenv("MONGO_DB_NAME")),
		CassandraHost:   strings.TrimSpace(os.Getenv("CASS_DB")),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		ResyncInterval:  parseDuration(os.Getenv("RESYNC_INTERVAL"), 5*time.Minute),
		RetentionPeriod: parseDuration(os.Getenv("NOTIFICATION_RETENTION"), 30*24*time.Hour),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.MongoDBName == "" {
		cfg.MongoDBName = "taskboard_db"
	}
	if cfg.CassandraHost == "" {
		cfg.CassandraHost = "127.0.0.1"
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
