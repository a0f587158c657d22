package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	ServerPort  string
	GinMode     string
	Environment string
	LogLevel    string

	StoreBackend  string
	RedisURI      string
	MongoURI      string
	MongoDatabase string

	AccessTokenSecret string
	AccessTokenExpiry time.Duration

	Timezone    string
	MatchWindow time.Duration

	ArchiveEnabled bool
	ArchiveWorkers int
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UseSSL       bool
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	// Load .env file (ignore error if file doesn't exist - env vars may be set directly)
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		Environment:       getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StoreBackend:      getEnv("STORE_BACKEND", "redis"),
		RedisURI:          getEnv("REDIS_URI", "localhost:6379"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "carpool"),
		AccessTokenSecret: getEnvRequired("ACCESS_TOKEN_SECRET"),
		AccessTokenExpiry: parseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "12h")),
		Timezone:          getEnv("APP_TIMEZONE", "Local"),
		MatchWindow:       parseDuration(getEnv("MATCH_WINDOW", "60m")),
		ArchiveEnabled:    getEnv("ARCHIVE_ENABLED", "false") == "true",
		ArchiveWorkers:    parseInt(getEnv("ARCHIVE_WORKERS", "2")),
		S3Endpoint:        getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:       getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:          getEnv("S3_BUCKET", "ride-archive"),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
	}

	// The Mongo URI is only needed when Mongo is the backend.
	if cfg.StoreBackend == "mongo" {
		cfg.MongoURI = getEnvRequired("MONGO_URI")
	} else {
		cfg.MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	}

	return cfg
}

// Location resolves Timezone, falling back to the host's local zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown APP_TIMEZONE %q, using local time", c.Timezone)
		return time.Local
	}
	return loc
}

// getEnv reads an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvRequired reads an environment variable and exits if not set
func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Required environment variable %s is not set", key)
	}
	return value
}

// parseDuration parses a duration string, exits on error
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("Invalid duration format: %s", s)
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("Invalid integer: %s", s)
	}
	return n
}
