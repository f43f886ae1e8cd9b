package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/rohits-web03/codedrop/internal/models"
)

const tempPattern = ".upload-*"

// LocalStore keeps blobs on the local filesystem and hands out URLs signed by
// a URLSigner, which the API serves itself.
type LocalStore struct {
	root   string
	signer *URLSigner
}

func NewLocalStore(root string, signer *URLSigner) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage root")
	}
	return &LocalStore{root: root, signer: signer}, nil
}

func (l *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("invalid key %q", key)
	}
	return filepath.Join(l.root, clean), nil
}

func (l *LocalStore) Put(_ context.Context, key string, body io.Reader, size int64, opts PutOptions) error {
	dst, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrap(err, "create key directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), tempPattern)
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if err := l.writeObject(tmp, body, size, opts.Parts); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}

	if opts.Overwrite {
		if err := os.Rename(tmp.Name(), dst); err != nil {
			return errors.Wrap(err, "move into place")
		}
		return nil
	}
	// Link fails when dst exists, which makes the no-overwrite write atomic.
	if err := os.Link(tmp.Name(), dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errors.Wrap(ErrAlreadyExists, key)
		}
		return errors.Wrap(err, "link into place")
	}
	return nil
}

func (l *LocalStore) writeObject(w io.Writer, body io.Reader, size int64, parts []string) error {
	for _, part := range parts {
		p, err := l.path(part)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return errors.Wrap(ErrObjectNotFound, part)
			}
			return errors.Wrap(err, "open part")
		}
		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return errors.Wrap(err, "copy part")
		}
	}
	n, err := io.Copy(w, body)
	if err != nil {
		return errors.Wrap(err, "write body")
	}
	if n != size {
		return errors.Errorf("size mismatch: expected %d bytes, got %d", size, n)
	}
	return nil
}

// List walks only the directory holding prefix. Entries removed while the walk
// runs, by a sweep or part cleanup, are skipped.
func (l *LocalStore) List(_ context.Context, prefix string) ([]models.StoredFile, error) {
	dir := l.root
	if d := path.Dir(prefix + "x"); d != "." {
		var err error
		if dir, err = l.path(d); err != nil {
			return nil, err
		}
	}

	files := make([]models.StoredFile, 0)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		files = append(files, models.StoredFile{
			Key:  key,
			Name: strings.TrimPrefix(key, prefix),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", prefix)
	}
	return files, nil
}

func (l *LocalStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	p, err := l.path(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrap(ErrObjectNotFound, key)
		}
		return "", errors.Wrap(err, "stat object")
	}
	return l.signer.Sign(key, ttl)
}

func (l *LocalStore) Remove(_ context.Context, keys ...string) error {
	for _, key := range keys {
		p, err := l.path(key)
		if err != nil {
			return err
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "remove %s", key)
		}
	}
	return nil
}

func (l *LocalStore) DeletePrefix(ctx context.Context, prefix string) error {
	if strings.HasSuffix(prefix, "/") {
		p, err := l.path(prefix)
		if err != nil {
			return err
		}
		if err := os.RemoveAll(p); err != nil {
			return errors.Wrap(err, "remove prefix")
		}
		return nil
	}
	files, err := l.List(ctx, prefix)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(files))
	for _, f := range files {
		keys = append(keys, f.Key)
	}
	return l.Remove(ctx, keys...)
}

// Open resolves a signed token and opens the blob it points at.
func (l *LocalStore) Open(token string) (*os.File, string, error) {
	key, err := l.signer.Verify(token)
	if err != nil {
		return nil, "", err
	}
	p, err := l.path(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", errors.Wrap(ErrObjectNotFound, key)
		}
		return nil, "", errors.Wrap(err, "open object")
	}
	return f, key, nil
}
