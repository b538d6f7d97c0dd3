// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCalendarFeedURL is the weekly economic calendar feed
const DefaultCalendarFeedURL = "https://nfs.faireconomy.media/ff_calendar_thisweek.json"

// Config holds application configuration
type Config struct {
	DataDir     string // Base directory for the local cache database (always absolute)
	Port        int
	LogLevel    string
	DevMode     bool
	DatabaseURL string // Contest store (Postgres). Empty runs on a local SQLite contest.db.

	CalendarFeedURL  string
	CalendarCacheTTL time.Duration

	// Hosts allowed to open drawing sessions cross-origin, e.g. "*.example.com"
	WSOriginPatterns []string

	Scheduler *SchedulerConfig
	Backup    *BackupConfig
}

// SchedulerConfig holds cron expressions for background jobs. An empty
// expression disables the job.
type SchedulerConfig struct {
	CalendarRefresh   string
	SnapshotRetention string
	Backup            string
	RetentionDays     int
}

// BackupConfig holds S3-compatible object storage settings
type BackupConfig struct {
	Bucket          string
	Region          string
	Endpoint        string // Custom endpoint for R2, MinIO, ...
	PathStyle       bool   // MinIO needs path-style addressing
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	KeepCount       int
}

// Enabled reports whether backups are configured
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("ARENA_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("GO_PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		CalendarFeedURL:  getEnv("CALENDAR_FEED_URL", DefaultCalendarFeedURL),
		CalendarCacheTTL: getEnvAsDuration("CALENDAR_CACHE_TTL", 5*time.Minute),
		WSOriginPatterns: getEnvAsList("WS_ORIGIN_PATTERNS"),
		Scheduler:        loadSchedulerConfig(),
		Backup:           loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CacheDBPath returns the path of the local cache database
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// ContestDBPath returns the path of the local contest store used when no
// DATABASE_URL is set
func (c *Config) ContestDBPath() string {
	return filepath.Join(c.DataDir, "contest.db")
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid GO_PORT %d", c.Port)
	}

	if c.CalendarFeedURL != "" {
		u, err := url.Parse(c.CalendarFeedURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid CALENDAR_FEED_URL %q", c.CalendarFeedURL)
		}
	}

	if c.DatabaseURL != "" && !strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must be a postgres:// URL")
	}

	// Static credentials come in pairs
	if c.Backup.Enabled() && (c.Backup.AccessKeyID == "") != (c.Backup.SecretAccessKey == "") {
		return fmt.Errorf("BACKUP_ACCESS_KEY_ID and BACKUP_SECRET_ACCESS_KEY must be set together")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func loadSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		CalendarRefresh:   getEnv("SCHEDULE_CALENDAR_REFRESH", "0 */15 * * * *"),
		SnapshotRetention: getEnv("SCHEDULE_SNAPSHOT_RETENTION", "0 30 3 * * *"),
		Backup:            getEnv("SCHEDULE_BACKUP", "0 0 4 * * *"),
		RetentionDays:     getEnvAsInt("SNAPSHOT_RETENTION_DAYS", 30),
	}
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Bucket:          getEnv("BACKUP_BUCKET", ""),
		Region:          getEnv("BACKUP_REGION", "auto"),
		Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
		PathStyle:       getEnvAsBool("BACKUP_PATH_STYLE", false),
		AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("BACKUP_PREFIX", "arena-backups"),
		KeepCount:       getEnvAsInt("BACKUP_KEEP_COUNT", 14),
	}
}
