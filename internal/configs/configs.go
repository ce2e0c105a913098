/*
Package configs is responsible for loading and parsing the application's configuration settings.

Settings come from operating system environment variables. A .env file in the working
directory is read first when present; variables already set in the environment win.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers selected from the DATABASE_URL scheme.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongodb"
)

// Object storage drivers for the avatar mirror.
const (
	StorageNone  = ""
	StorageS3    = "s3"
	StorageMinio = "minio"
)

const (
	defaultPort         = 5000
	defaultBcryptCost   = 10
	defaultMongoDB      = "chat"
	defaultDevOrigin    = "http://localhost:3000"
	minBcryptCost       = 4
	maxBcryptCost       = 31
	environmentDev      = "development"
	minUnprivilegedPort = 1024
	maxPort             = 65535
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string
	BcryptCost     int

	// Database Settings
	DatabaseURL string
	StoreDriver string
	MongoDB     string

	// Avatar object storage settings
	StorageDriver     string
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UseSSL          bool
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == environmentDev
}

// LoadConfig reads and parses the application configuration from environment variables.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = getenv("ENVIRONMENT", environmentDev)

	port, err := intFromEnv("PORT", defaultPort)
	if err != nil {
		return nil, err
	}
	if port < minUnprivilegedPort || port > maxPort {
		return nil, fmt.Errorf("port number %d is outside the allowed range (%d-%d)", port, minUnprivilegedPort, maxPort)
	}
	cfg.Port = port

	// --- Security Settings ---
	originsStr := getenv("ALLOWED_ORIGINS", os.Getenv("ALLOWED_ORIGIN"))
	cfg.AllowedOrigins = splitList(originsStr)
	if len(cfg.AllowedOrigins) == 0 && cfg.IsDevelopment() {
		cfg.AllowedOrigins = []string{defaultDevOrigin}
	}

	cost, err := intFromEnv("BCRYPT_COST", defaultBcryptCost)
	if err != nil {
		return nil, err
	}
	if cost < minBcryptCost || cost > maxBcryptCost {
		return nil, fmt.Errorf("BCRYPT_COST %d is outside the allowed range (%d-%d)", cost, minBcryptCost, maxBcryptCost)
	}
	cfg.BcryptCost = cost

	// --- Database Settings ---
	cfg.DatabaseURL = getenv("DATABASE_URL", os.Getenv("MONGO_URL"))
	if cfg.DatabaseURL == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required in %s environment", cfg.Environment)
		}
		cfg.DatabaseURL = StoreMemory
	}

	driver, err := StoreDriverFor(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	cfg.StoreDriver = driver
	cfg.MongoDB = getenv("MONGO_DB", defaultMongoDB)

	// --- Avatar Object Storage ---
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER")))
	switch cfg.StorageDriver {
	case StorageNone:
	case StorageS3, StorageMinio:
		if err := loadObjectStorage(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// StoreDriverFor derives the store driver from a database connection string.
func StoreDriverFor(databaseURL string) (string, error) {
	switch {
	case databaseURL == StoreMemory:
		return StoreMemory, nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return StorePostgres, nil
	case strings.HasPrefix(databaseURL, "mongodb://"), strings.HasPrefix(databaseURL, "mongodb+srv://"):
		return StoreMongo, nil
	}
	return "", fmt.Errorf("unsupported DATABASE_URL scheme in %q", redactURL(databaseURL))
}

func loadObjectStorage(cfg *AppConfig) error {
	required := map[string]*string{
		"S3_BUCKET_NAME":       &cfg.S3BucketName,
		"S3_ENDPOINT":          &cfg.S3Endpoint,
		"S3_ACCESS_KEY_ID":     &cfg.S3AccessKeyID,
		"S3_SECRET_ACCESS_KEY": &cfg.S3SecretAccessKey,
	}

	for _, key := range []string{"S3_BUCKET_NAME", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY"} {
		value := os.Getenv(key)
		if value == "" {
			return fmt.Errorf("%s environment variable is required when STORAGE_DRIVER=%s", key, cfg.StorageDriver)
		}
		*required[key] = value
	}

	useSSL, err := strconv.ParseBool(getenv("S3_USE_SSL", "true"))
	if err != nil {
		return fmt.Errorf("invalid S3_USE_SSL environment variable: %w", err)
	}
	cfg.S3UseSSL = useSSL

	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// redactURL strips everything after the scheme so credentials never reach the logs.
func redactURL(s string) string {
	if i := strings.Index(s, "://"); i >= 0 {
		return s[:i+3] + "..."
	}
	if len(s) > 12 {
		return s[:12] + "..."
	}
	return s
}
