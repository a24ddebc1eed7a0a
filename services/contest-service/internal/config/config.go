// Package config loads the contest service settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	dbpkg "dailyart/shared/pkg/db"
)

// Config holds all configuration for the contest service
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Storage  StorageConfig
	Contest  ContestConfig
	LogLevel string
}

// DatabaseConfig selects MySQL or SQLite and carries the pool settings
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SQLitePath      string
	BusyTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	GRPCPort        string
	HTTPPort        string
	AllowedOrigins  string
	RateLimit       int
	RateWindow      time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig chooses where images are kept: "local" or "ftp".
type StorageConfig struct {
	Backend        string
	LocalDir       string
	FTPHost        string
	FTPPort        string
	FTPUser        string
	FTPPassword    string
	FTPBaseDir     string
	MaxUploadBytes int64
	ThumbnailWidth uint
	MaxPixels      int64
}

type ContestConfig struct {
	DefaultPrompt  string
	PromptSchedule string
	SessionTTL     time.Duration
	PodiumCacheTTL time.Duration
}

// Load reads the given env files (missing files are skipped) and builds the
// configuration from environment variables.
func Load(envFiles ...string) *Config {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", dbpkg.DriverMySQL),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 3306),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_DATABASE", "dailyart"),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "dailyart.db"),
			BusyTimeout:     getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Server: ServerConfig{
			GRPCPort:        getEnv("GRPC_PORT", "50061"),
			HTTPPort:        getEnv("HTTP_PORT", "8061"),
			AllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
			RateLimit:       getEnvInt("RATE_LIMIT", 60),
			RateWindow:      getEnvDuration("RATE_WINDOW", time.Minute),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Backend:        getEnv("STORAGE_BACKEND", "local"),
			LocalDir:       getEnv("STORAGE_DIR", "storage/images"),
			FTPHost:        getEnv("FTP_HOST", "localhost"),
			FTPPort:        getEnv("FTP_PORT", "21"),
			FTPUser:        getEnv("FTP_USER", ""),
			FTPPassword:    getEnv("FTP_PASSWORD", ""),
			FTPBaseDir:     getEnv("FTP_BASE_DIR", "dailyart"),
			MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
			ThumbnailWidth: uint(getEnvInt("THUMBNAIL_WIDTH", 320)),
			MaxPixels:      int64(getEnvInt("MAX_IMAGE_PIXELS", 40_000_000)),
		},
		Contest: ContestConfig{
			DefaultPrompt:  getEnv("DEFAULT_PROMPT", "Alien Invasion"),
			PromptSchedule: getEnv("PROMPT_SCHEDULE", ""),
			SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
			PodiumCacheTTL: getEnvDuration("PODIUM_CACHE_TTL", 30*time.Second),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DB converts the database section into connection settings.
func (c DatabaseConfig) DB() dbpkg.Config {
	return dbpkg.Config{
		Driver:          c.Driver,
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Database:        c.Database,
		SQLitePath:      c.SQLitePath,
		BusyTimeout:     c.BusyTimeout,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
