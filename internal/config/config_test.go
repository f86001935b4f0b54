package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AWS_S3_BUCKET_NAME", "inspect-bucket")
	t.Setenv("SERVER_PORT", "8088")
	t.Setenv("STORAGE_SIGNED_URL_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "inspect-bucket", cfg.S3.Bucket)
	assert.Equal(t, "AIInspection", cfg.Storage.RootPrefix)
	assert.Equal(t, 30*time.Minute, cfg.Storage.SignedURLTTL)
	assert.Equal(t, 8, cfg.Storage.Concurrency)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Driver: "s3", SignedURLTTL: time.Hour, Concurrency: 4}}
	assert.Error(t, cfg.Validate())

	cfg.S3.Bucket = "b"
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "minio"
	assert.Error(t, cfg.Validate())
	cfg.MinIO = MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "ftp"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = "s3"
	cfg.Storage.Concurrency = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Storage.Concurrency)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("NIMO_INSPECT_TEST_KEY", "v")
	assert.Equal(t, "v", GetEnvOrDefault("NIMO_INSPECT_TEST_KEY", "d"))
	assert.Equal(t, "d", GetEnvOrDefault("NIMO_INSPECT_MISSING_KEY", "d"))
}
