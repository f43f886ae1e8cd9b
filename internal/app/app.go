// Package app wires configuration into the stores and the transfer manager.
package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rohits-web03/codedrop/internal/cache"
	"github.com/rohits-web03/codedrop/internal/config"
	"github.com/rohits-web03/codedrop/internal/logging"
	"github.com/rohits-web03/codedrop/internal/repositories"
	"github.com/rohits-web03/codedrop/internal/storage"
	"github.com/rohits-web03/codedrop/internal/transfer"
)

type App struct {
	Config  config.Config
	Logger  *zap.Logger
	DB      *gorm.DB
	Blobs   storage.BlobStore
	Manager *transfer.Manager
}

// NewLogger builds the process logger from the log settings and installs it as the default.
func NewLogger(conf config.LogConfig) *zap.Logger {
	logger := logging.NewLogger(&logging.Config{
		Level:    logging.ParseLevel(conf.Level),
		FilePath: conf.File,
	})
	logging.SetDefault(logger)
	return logger
}

func New(ctx context.Context, conf config.Config, logger *zap.Logger) (*App, error) {
	db, err := repositories.ConnectDatabase(conf.DBDriver, conf.DB_URL, logger)
	if err != nil {
		return nil, err
	}

	blobs, err := storage.NewBlobStoreFromConfig(ctx, conf.Storage, logger)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, errors.Wrap(err, "init blob store")
	}

	manager := transfer.NewManager(
		blobs,
		repositories.NewTransferRepository(db),
		cache.NewCache(conf.Cache),
		transfer.Options{
			TTL:                  conf.Transfer.TTL,
			ChunkSize:            conf.Transfer.ChunkSize,
			SignedURLTTL:         conf.Transfer.SignedURLTTL,
			UploadParallelism:    conf.Transfer.UploadParallelism,
			CacheTTL:             conf.Cache.TTL,
			IsolateSweepFailures: conf.Sweep.IsolateFailures,
			Logger:               logger,
		},
	)

	return &App{
		Config:  conf,
		Logger:  logger,
		DB:      db,
		Blobs:   blobs,
		Manager: manager,
	}, nil
}

// LocalBlobs returns the filesystem store when it backs the app, for serving signed downloads.
func (a *App) LocalBlobs() *storage.LocalStore {
	local, _ := a.Blobs.(*storage.LocalStore)
	return local
}

func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
