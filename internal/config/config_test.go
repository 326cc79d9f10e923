package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestLoad_Workspace(t *testing.T) {
	t.Setenv("INGEST_CONCURRENCY", "8")
	t.Setenv("DROP_CLAIM_TTL_SEC", "5")
	t.Setenv("UPLOAD_URL", "http://localhost:8080/upload")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_OBJECT_REFERENCES", "")

	cfg := Load()

	assert.Equal(t, 8, cfg.Workspace.IngestConcurrency)
	assert.Equal(t, 5*time.Second, cfg.Workspace.DropClaimTTL())
	assert.Equal(t, 30*time.Second, cfg.Workspace.UploadTimeout())
	assert.Equal(t, 0, cfg.Workspace.MaxObjectReferences)
	assert.Equal(t, 64<<20, cfg.Workspace.MaxUploadBytes)
	assert.Equal(t, "http://localhost:8080/upload", cfg.Workspace.UploadURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestUploadsEnabled(t *testing.T) {
	cfg := &AppConfig{}
	assert.False(t, cfg.UploadsEnabled())

	cfg.Database.Host = "db"
	cfg.MinIO.Endpoint = "minio:9000"
	assert.False(t, cfg.UploadsEnabled())

	cfg.MinIO.Bucket = "uploads"
	assert.True(t, cfg.UploadsEnabled())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
