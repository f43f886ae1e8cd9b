package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{"DB_DRIVER", "DB_URL", "PORT", "STORAGE_DRIVER", "TRANSFER_TTL", "CHUNK_SIZE", "LOG_LEVEL", "R2_USE_PATH_STYLE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Transfer.TTL)
	assert.Equal(t, int64(10*MiB), cfg.Transfer.ChunkSize)
	assert.Equal(t, 300*time.Second, cfg.Transfer.SignedURLTTL)
	assert.Equal(t, "@every 1h", cfg.Sweep.Schedule)
	assert.True(t, cfg.Storage.R2.UsePathStyle)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CorsConfig.AllowedOrigins)
}

func TestLoad_FromEnvFile(t *testing.T) {
	isolateEnv(t)
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_DRIVER=sqlite\nDB_URL=codedrop.db\nSTORAGE_DRIVER=memory\nTRANSFER_TTL=2h\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Transfer.TTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MalformedValue(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TRANSFER_TTL", "one day")

	_, err := Load()
	assert.ErrorContains(t, err, "TRANSFER_TTL")
}

func validConfig() Config {
	return Config{
		DBDriver: "sqlite",
		DB_URL:   "codedrop.db",
		Port:     "8080",
		Storage:  StorageConfig{Driver: "memory"},
		Transfer: TransferConfig{
			TTL:            24 * time.Hour,
			ChunkSize:      10 * MiB,
			SignedURLTTL:   300 * time.Second,
			MaxUploadBytes: 1 << 30,
		},
		Log: LogConfig{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{name: "valid", modify: func(*Config) {}, ok: true},
		{name: "missing db url", modify: func(c *Config) { c.DB_URL = "" }},
		{name: "unknown db driver", modify: func(c *Config) { c.DBDriver = "oracle" }},
		{name: "non numeric port", modify: func(c *Config) { c.Port = "http" }},
		{name: "unknown storage", modify: func(c *Config) { c.Storage.Driver = "ftp" }},
		{name: "small chunk", modify: func(c *Config) { c.Transfer.ChunkSize = MiB }},
		{name: "bad log level", modify: func(c *Config) { c.Log.Level = "verbose" }},
		{name: "s3 without credentials", modify: func(c *Config) { c.Storage.Driver = "s3" }},
		{name: "s3 with endpoint", modify: func(c *Config) {
			c.Storage.Driver = "s3"
			c.Storage.R2 = R2Config{BucketName: "transfers", AccessKeyID: "id", SecretAccessKey: "secret", Endpoint: "http://localhost:9000"}
		}, ok: true},
		{name: "local without secret", modify: func(c *Config) {
			c.Storage.Driver = "local"
			c.Storage.Local.Dir = "uploads"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCorsConfig(t *testing.T) {
	opts := CorsConfig(" http://a.example , ,http://b.example")
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, opts.AllowedOrigins)
	assert.Contains(t, opts.AllowedMethods, "POST")
}
