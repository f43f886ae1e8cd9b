package storage

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/config"
)

// NewBlobStoreFromConfig creates a BlobStore implementation based on the storage driver.
func NewBlobStoreFromConfig(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (BlobStore, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Store(cfg.R2, log), nil
	case "minio":
		store, err := NewMinioStore(ctx, cfg.Minio, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "local":
		if cfg.Local.Dir == "" || cfg.Local.SigningSecret == "" {
			return nil, errors.New("local storage requires a directory and a signing secret")
		}
		store, err := NewLocalStore(cfg.Local.Dir, NewURLSigner(cfg.Local.SigningSecret, cfg.Local.PublicBaseURL))
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, errors.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
