package transfer

import (
	"context"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/codedrop/internal/models"
	"github.com/rohits-web03/codedrop/internal/repositories"
	"github.com/rohits-web03/codedrop/internal/storage"
)

var errCodeSpaceExhausted = errors.New("no free access code after repeated attempts")

// Source is one local file offered for upload.
type Source struct {
	Name    string
	Size    int64
	Content io.ReaderAt
}

// Upload stores every file under a fresh code and registers the transfer once
// all of them are complete.
func (m *Manager) Upload(ctx context.Context, files []Source) (*models.Transfer, error) {
	if err := validateSources(files); err != nil {
		return nil, err
	}

	code, err := m.newCode(ctx)
	if err != nil {
		return nil, err
	}
	log := m.log.With(zap.String("code", code))
	log.Info("uploading transfer", zap.Int("files", len(files)))

	if err := m.UploadFiles(ctx, code, files); err != nil {
		log.Error("upload failed", zap.Error(err))
		return nil, err
	}

	transfer, err := m.Register(ctx, code, len(files))
	if err != nil {
		log.Error("register failed", zap.Error(err))
		return nil, err
	}
	log.Info("transfer created", zap.Time("expires_at", transfer.ExpiresAt))
	return transfer, nil
}

// UploadFiles writes every file of the batch under code. Files upload
// concurrently; a failing file does not stop its siblings, and the first
// failure is returned once all of them settled.
func (m *Manager) UploadFiles(ctx context.Context, code string, files []Source) error {
	var g errgroup.Group
	g.SetLimit(m.opts.UploadParallelism)
	for _, f := range files {
		g.Go(func() error {
			return m.uploadFile(ctx, code, f)
		})
	}
	return g.Wait()
}

// uploadFile writes one file chunk by chunk, in order. Every chunk but the last
// lands on its own part key; the last one finalizes the file key from the parts.
func (m *Manager) uploadFile(ctx context.Context, code string, f Source) error {
	key := storage.FileKey(code, f.Name)
	var parts []string

	for start := int64(0); ; {
		end := min(start+m.opts.ChunkSize, f.Size)
		body := io.NewSectionReader(f.Content, start, end-start)

		if end == f.Size {
			opts := storage.PutOptions{Overwrite: true, Parts: parts, Offset: start}
			if err := m.blobs.Put(ctx, key, body, end-start, opts); err != nil {
				return storeErr("upload "+f.Name, err)
			}
			break
		}

		partKey := storage.PartKey(key, start)
		if err := m.blobs.Put(ctx, partKey, body, end-start, storage.PutOptions{Offset: start}); err != nil {
			return storeErr("upload "+f.Name, err)
		}
		parts = append(parts, partKey)
		start = end
	}

	if len(parts) > 0 {
		if err := m.blobs.Remove(ctx, parts...); err != nil {
			m.log.Warn("could not remove uploaded parts", zap.String("key", key), zap.Error(err))
		}
	}
	m.log.Debug("file uploaded", zap.String("key", key), zap.Int64("size", f.Size), zap.Int("chunks", len(parts)+1))
	return nil
}

// Register records the transfer. Call it only after UploadFiles succeeded for the whole batch.
func (m *Manager) Register(ctx context.Context, code string, fileCount int) (*models.Transfer, error) {
	transfer := &models.Transfer{
		Code:      code,
		FileCount: fileCount,
		ExpiresAt: m.now().Add(m.opts.TTL),
	}
	if err := m.transfers.Create(ctx, transfer); err != nil {
		if errors.Is(err, repositories.ErrCodeConflict) {
			// The prefix is shared with the batch that won the code, so its
			// files are left in place.
			m.log.Error("access code claimed by a concurrent upload", zap.String("code", code))
		}
		return nil, storeErr("register transfer", err)
	}
	return transfer, nil
}

// newCode draws codes until one is held by neither a transfer record nor any blob.
// Two concurrent uploads can still draw the same unused code; with 16^6 codes
// that is accepted, and the unique index lets only one of them register.
func (m *Manager) newCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := m.opts.GenerateCode()

		taken, err := m.transfers.CodeExists(ctx, code)
		if err != nil {
			return "", storeErr("check code", err)
		}
		if !taken {
			existing, err := m.blobs.List(ctx, storage.Prefix(code))
			if err != nil {
				return "", storeErr("check code", err)
			}
			taken = len(existing) > 0
		}
		if !taken {
			return code, nil
		}
		m.log.Debug("access code collision", zap.String("code", code), zap.Int("attempt", attempt+1))
	}
	return "", storeErr("generate code", errCodeSpaceExhausted)
}

func validateSources(files []Source) error {
	if len(files) == 0 {
		return invalid("please select at least one file")
	}
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		switch {
		case f.Name == "" || f.Name == "." || f.Name == "..":
			return invalid("file name is required")
		case strings.ContainsAny(f.Name, `/\`):
			return invalid("file name must not contain path separators: " + f.Name)
		case storage.IsPartKey(f.Name):
			return invalid("file name uses a reserved suffix: " + f.Name)
		case f.Size < 0:
			return invalid("file size must not be negative: " + f.Name)
		case f.Content == nil:
			return invalid("file has no content: " + f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return invalid("duplicate file name: " + f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}
