package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/config"
)

func TestNewBlobStoreFromConfig(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	t.Run("memory", func(t *testing.T) {
		store, err := NewBlobStoreFromConfig(ctx, config.StorageConfig{Driver: "memory"}, log)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("local", func(t *testing.T) {
		store, err := NewBlobStoreFromConfig(ctx, config.StorageConfig{
			Driver: "local",
			Local:  config.LocalConfig{Dir: t.TempDir(), SigningSecret: "secret", PublicBaseURL: "http://localhost:8080"},
		}, log)
		require.NoError(t, err)
		assert.IsType(t, &LocalStore{}, store)
	})

	t.Run("local without signing secret", func(t *testing.T) {
		store, err := NewBlobStoreFromConfig(ctx, config.StorageConfig{
			Driver: "local",
			Local:  config.LocalConfig{Dir: t.TempDir()},
		}, log)
		require.EqualError(t, err, "local storage requires a directory and a signing secret")
		assert.Nil(t, store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		store, err := NewBlobStoreFromConfig(ctx, config.StorageConfig{Driver: "ftp"}, log)
		require.EqualError(t, err, "unknown storage driver: ftp")
		assert.Nil(t, store)
	})
}
