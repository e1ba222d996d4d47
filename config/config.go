package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Log      LogConfig
	CORS     CORSConfig
	HTTP     HTTPConfig
	Stats    StatsConfig
}

type ServerConfig struct {
	Port            string
	GinMode         string
	Environment     string
	ShutdownTimeout time.Duration
}

type StorageConfig struct {
	Driver string // mongo, postgres, sqlite
}

type DatabaseConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	CartTTL  time.Duration
}

type LogConfig struct {
	Level  string
	Format string // console, json
}

type CORSConfig struct {
	AllowedOrigins []string
}

type HTTPConfig struct {
	// StrictStatus maps error kinds to distinct status codes instead of
	// answering every failure with 404.
	StrictStatus bool
}

type StatsConfig struct {
	Schedule string // cron spec; empty disables the job
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	defaultLevel := "info"
	if environment == "development" {
		defaultLevel = "debug"
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			GinMode:         getEnv("GIN_MODE", "debug"),
			Environment:     environment,
			ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverMongo)),
		},
		Database: DatabaseConfig{
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "admin"),
			Password:   getEnv("DB_PASSWORD", "1234"),
			DBName:     getEnv("DB_NAME", "ecommerce"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "carts.db"),
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnv("MONGO_DATABASE", "ecommerce"),
			Collection: getEnv("MONGO_COLLECTION", "carts"),
			Timeout:    parseDuration(getEnv("MONGO_TIMEOUT", "10s"), 10*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
			CartTTL:  parseDuration(getEnv("REDIS_CART_TTL", "10m"), 10*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", defaultLevel),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		HTTP: HTTPConfig{
			StrictStatus: parseBool(getEnv("HTTP_STRICT_STATUS", "false")),
		},
		Stats: StatsConfig{
			Schedule: os.Getenv("STATS_SCHEDULE"),
		},
	}
	if _, set := os.LookupEnv("STATS_SCHEDULE"); !set {
		config.Stats.Schedule = "@every 1h"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (want mongo, postgres or sqlite)", c.Storage.Driver)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT must not be empty")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Printf("Invalid boolean %s, using false", s)
		return false
	}
	return b
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
