package transfer

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/codedrop/internal/cache"
	"github.com/rohits-web03/codedrop/internal/models"
	"github.com/rohits-web03/codedrop/internal/repositories"
	"github.com/rohits-web03/codedrop/internal/storage"
)

// Resolve turns a user-supplied code into the transfer and its downloadable files.
func (m *Manager) Resolve(ctx context.Context, raw string) (*models.Transfer, []models.DownloadFile, error) {
	transfer, err := m.GetTransfer(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	files, err := m.DownloadURLs(ctx, transfer.Code)
	if err != nil {
		return nil, nil, err
	}
	return transfer, files, nil
}

// GetTransfer looks a code up and rejects it once expired, whether or not the
// sweep already removed it.
func (m *Manager) GetTransfer(ctx context.Context, raw string) (*models.Transfer, error) {
	code, err := NormalizeCode(raw)
	if err != nil {
		return nil, err
	}

	transfer, err := cache.Fetch(ctx, m.cache, transferCacheKey(code), m.opts.CacheTTL, func() (models.Transfer, error) {
		t, err := m.transfers.FindByCode(ctx, code)
		if err != nil {
			return models.Transfer{}, err
		}
		return *t, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTransferNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("find transfer", err)
	}

	if transfer.Expired(m.now()) {
		return nil, ErrExpired
	}
	return &transfer, nil
}

// DownloadURLs signs every finished file under code. Files whose URL cannot be
// signed are left out rather than failing the whole request.
func (m *Manager) DownloadURLs(ctx context.Context, code string) ([]models.DownloadFile, error) {
	listed, err := m.blobs.List(ctx, storage.Prefix(code))
	if err != nil {
		return nil, storeErr("list files", err)
	}

	files := make([]models.StoredFile, 0, len(listed))
	for _, f := range listed {
		if !storage.IsPartKey(f.Key) {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, ErrNotFound
	}

	signed := make([]*models.DownloadFile, len(files))
	var g errgroup.Group
	for i, f := range files {
		g.Go(func() error {
			url, err := m.blobs.SignedURL(ctx, f.Key, m.opts.SignedURLTTL)
			if err != nil {
				m.log.Warn("dropping file with unsigned url", zap.String("key", f.Key), zap.Error(err))
				return nil
			}
			signed[i] = &models.DownloadFile{Name: f.Name, URL: url, Size: f.Size}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.DownloadFile, 0, len(signed))
	for _, f := range signed {
		if f != nil && f.URL != "" {
			out = append(out, *f)
		}
	}
	return out, nil
}
