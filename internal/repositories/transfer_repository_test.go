package repositories_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/models"
	"github.com/rohits-web03/codedrop/internal/repositories"
)

func setupRepo(t *testing.T) repositories.TransferRepository {
	t.Helper()
	db, err := repositories.ConnectDatabase("sqlite", filepath.Join(t.TempDir(), "codedrop.db"), zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return repositories.NewTransferRepository(db)
}

func TestConnectDatabase_UnknownDriver(t *testing.T) {
	_, err := repositories.ConnectDatabase("oracle", "", zap.NewNop())
	assert.Error(t, err)
}

func TestTransferRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	expires := time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)

	transfer := &models.Transfer{Code: "AB12CD", FileCount: 3, ExpiresAt: expires}
	require.NoError(t, repo.Create(ctx, transfer))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", transfer.ID.String())
	assert.False(t, transfer.CreatedAt.IsZero())

	found, err := repo.FindByCode(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, transfer.ID, found.ID)
	assert.Equal(t, 3, found.FileCount)
	assert.True(t, expires.Equal(found.ExpiresAt))

	_, err = repo.FindByCode(ctx, "ZZ99ZZ")
	assert.ErrorIs(t, err, repositories.ErrTransferNotFound)
}

func TestTransferRepository_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	expires := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(ctx, &models.Transfer{Code: "AB12CD", FileCount: 1, ExpiresAt: expires}))
	err := repo.Create(ctx, &models.Transfer{Code: "AB12CD", FileCount: 2, ExpiresAt: expires})
	assert.ErrorIs(t, err, repositories.ErrCodeConflict)

	exists, err := repo.CodeExists(ctx, "AB12CD")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.CodeExists(ctx, "000000")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransferRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	for code, expires := range map[string]time.Time{
		"OLD001": now.Add(-2 * time.Hour),
		"OLD002": now.Add(-time.Minute),
		"NEW001": now.Add(time.Hour),
	} {
		require.NoError(t, repo.Create(ctx, &models.Transfer{Code: code, FileCount: 1, ExpiresAt: expires}))
	}

	expired, err := repo.ListExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, "OLD001", expired[0].Code)
	assert.Equal(t, "OLD002", expired[1].Code)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.FindByCode(ctx, "OLD001")
	assert.ErrorIs(t, err, repositories.ErrTransferNotFound)
	_, err = repo.FindByCode(ctx, "NEW001")
	assert.NoError(t, err)
}

func TestTransferRepository_DeleteByCodes(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	expires := time.Now().Add(time.Hour)

	require.NoError(t, repo.Create(ctx, &models.Transfer{Code: "AAAAAA", FileCount: 1, ExpiresAt: expires}))
	require.NoError(t, repo.Create(ctx, &models.Transfer{Code: "BBBBBB", FileCount: 1, ExpiresAt: expires}))

	n, err := repo.DeleteByCodes(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeleteByCodes(ctx, []string{"AAAAAA"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	exists, err := repo.CodeExists(ctx, "BBBBBB")
	require.NoError(t, err)
	assert.True(t, exists)
}
