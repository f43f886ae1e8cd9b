package config

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

const (
	MiB = 1 << 20

	// S3 multipart composition rejects non-final parts under 5 MiB.
	minChunkSize = 5 * MiB
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	Endpoint        string
	UsePathStyle    bool
}

type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
}

type LocalConfig struct {
	Dir           string
	SigningSecret string
	PublicBaseURL string
}

type StorageConfig struct {
	Driver string `validate:"oneof=s3 minio local memory"`
	R2     R2Config
	Minio  MinioConfig
	Local  LocalConfig
}

type TransferConfig struct {
	TTL               time.Duration `validate:"gt=0"`
	ChunkSize         int64         `validate:"min=5242880"`
	SignedURLTTL      time.Duration `validate:"gt=0"`
	UploadParallelism int           `validate:"gte=-1"`
	MaxUploadBytes    int64         `validate:"gt=0"`
}

type SweepConfig struct {
	Schedule        string
	IsolateFailures bool
}

type CacheConfig struct {
	MaxSize       int `validate:"gte=0"`
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
}

type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	File  string
}

type Config struct {
	DBDriver    string `validate:"oneof=postgres sqlite"`
	DB_URL      string `validate:"required"`
	Port        string `validate:"required,numeric"`
	Environment string
	CorsConfig  cors.Options
	Storage     StorageConfig
	Transfer    TransferConfig
	Sweep       SweepConfig
	Cache       CacheConfig
	Log         LogConfig
}

// Load reads the optional .env file named by ENV_FILE and builds a Config from the environment.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No", envFile, "file found")
	} else {
		log.Println("Loaded environment from", envFile)
	}

	e := &envReader{}
	cfg := Config{
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DB_URL:      getEnv("DB_URL", ""),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		CorsConfig:  CorsConfig(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "s3"),
			R2: R2Config{
				AccountID:       getEnv("R2_ACCOUNT_ID", ""),
				AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
				BucketName:      getEnv("R2_BUCKET_NAME", "transfers"),
				Region:          getEnv("R2_REGION", "auto"),
				Endpoint:        getEnv("R2_ENDPOINT", ""),
				UsePathStyle:    e.bool("R2_USE_PATH_STYLE", true),
			},
			Minio: MinioConfig{
				Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKeyID:     getEnv("MINIO_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("MINIO_SECRET_ACCESS_KEY", ""),
				BucketName:      getEnv("MINIO_BUCKET_NAME", "transfers"),
				Region:          getEnv("MINIO_REGION", ""),
				UseSSL:          e.bool("MINIO_USE_SSL", false),
			},
			Local: LocalConfig{
				Dir:           getEnv("LOCAL_STORAGE_DIR", "uploads"),
				SigningSecret: getEnv("BLOB_SIGNING_SECRET", ""),
				PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
			},
		},
		Transfer: TransferConfig{
			TTL:               e.duration("TRANSFER_TTL", 24*time.Hour),
			ChunkSize:         e.int64("CHUNK_SIZE", 10*MiB),
			SignedURLTTL:      e.duration("SIGNED_URL_TTL", 300*time.Second),
			UploadParallelism: e.int("UPLOAD_PARALLELISM", 4),
			MaxUploadBytes:    e.int64("MAX_UPLOAD_BYTES", 1<<30),
		},
		Sweep: SweepConfig{
			Schedule:        getEnv("SWEEP_SCHEDULE", "@every 1h"),
			IsolateFailures: e.bool("SWEEP_ISOLATE_FAILURES", false),
		},
		Cache: CacheConfig{
			MaxSize:       e.int("CACHE_MAX_SIZE", 8*MiB),
			TTL:           e.duration("CACHE_TTL", time.Minute),
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
			File:  getEnv("LOG_FILE", ""),
		},
	}
	if e.err != nil {
		return Config{}, e.err
	}
	return cfg, nil
}

// Validate checks field constraints and the settings each storage driver depends on.
func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	switch c.Storage.Driver {
	case "s3":
		r2 := c.Storage.R2
		if r2.BucketName == "" || r2.AccessKeyID == "" || r2.SecretAccessKey == "" {
			return errors.New("s3 storage requires R2_BUCKET_NAME, R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY")
		}
		if r2.AccountID == "" && r2.Endpoint == "" {
			return errors.New("s3 storage requires R2_ACCOUNT_ID or R2_ENDPOINT")
		}
	case "minio":
		if c.Storage.Minio.BucketName == "" || c.Storage.Minio.Endpoint == "" {
			return errors.New("minio storage requires MINIO_ENDPOINT and MINIO_BUCKET_NAME")
		}
	case "local":
		if c.Storage.Local.Dir == "" || c.Storage.Local.SigningSecret == "" {
			return errors.New("local storage requires LOCAL_STORAGE_DIR and BLOB_SIGNING_SECRET")
		}
	}
	if c.Transfer.ChunkSize < minChunkSize {
		return errors.Errorf("chunk size %d is below %d bytes", c.Transfer.ChunkSize, minChunkSize)
	}
	return nil
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// envReader parses typed values and keeps the first malformed one.
type envReader struct {
	err error
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = errors.Wrapf(err, "parse %s", key)
	}
}

func (e *envReader) int(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return n
}

func (e *envReader) int64(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return n
}

func (e *envReader) bool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return b
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return d
}

func CorsConfig(origins string) cors.Options {
	allowed := make([]string, 0)
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	return cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}
}
