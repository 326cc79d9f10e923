package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// WorkspaceConfig tunes the ingestion pipeline and the in-memory workspace.
type WorkspaceConfig struct {
	IngestConcurrency int
	// MaxObjectReferences caps live blob handles. Zero means unbounded.
	MaxObjectReferences int
	DropClaimTTLSec     int
	// UploadURL, when set, sends every ingested file to a remote upload endpoint.
	UploadURL        string
	UploadTimeoutSec int
	MaxUploadBytes   int
}

func (w WorkspaceConfig) DropClaimTTL() time.Duration {
	return time.Duration(w.DropClaimTTLSec) * time.Second
}

func (w WorkspaceConfig) UploadTimeout() time.Duration {
	return time.Duration(w.UploadTimeoutSec) * time.Second
}

// LogConfig selects the log level and an optional rotated log file.
type LogConfig struct {
	Level string
	File  string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Workspace WorkspaceConfig
	Log       LogConfig
}

// UploadsEnabled reports whether both the database and object storage are configured,
// which is what the in-process upload endpoint needs.
func (c *AppConfig) UploadsEnabled() bool {
	return c.Database.Host != "" && c.MinIO.Endpoint != "" && c.MinIO.Bucket != ""
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Workspace: WorkspaceConfig{
			IngestConcurrency:   getEnvInt("INGEST_CONCURRENCY", 4),
			MaxObjectReferences: getEnvInt("MAX_OBJECT_REFERENCES", 0),
			DropClaimTTLSec:     getEnvInt("DROP_CLAIM_TTL_SEC", 60),
			UploadURL:           getEnv("UPLOAD_URL", ""),
			UploadTimeoutSec:    getEnvInt("UPLOAD_TIMEOUT_SEC", 30),
			MaxUploadBytes:      getEnvInt("MAX_UPLOAD_BYTES", 64<<20),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
