package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/rohits-web03/codedrop/internal/models"
)

// MemoryStore keeps objects in a map. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		now:     time.Now,
	}
}

func (m *MemoryStore) Put(_ context.Context, key string, body io.Reader, size int64, opts PutOptions) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if int64(len(data)) != size {
		return errors.Errorf("size mismatch for %s: expected %d bytes, got %d", key, size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; ok && !opts.Overwrite {
		return errors.Wrap(ErrAlreadyExists, key)
	}
	if len(opts.Parts) > 0 {
		var buf bytes.Buffer
		for _, part := range opts.Parts {
			chunk, ok := m.objects[part]
			if !ok {
				return errors.Wrap(ErrObjectNotFound, part)
			}
			buf.Write(chunk)
		}
		buf.Write(data)
		data = buf.Bytes()
	}
	m.objects[key] = data
	return nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]models.StoredFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]models.StoredFile, 0)
	for key, data := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		files = append(files, models.StoredFile{
			Key:  key,
			Name: strings.TrimPrefix(key, prefix),
			Size: int64(len(data)),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}

func (m *MemoryStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", errors.Wrap(ErrObjectNotFound, key)
	}
	return fmt.Sprintf("memory:///%s?expires=%d", (&url.URL{Path: key}).EscapedPath(), m.now().Add(ttl).Unix()), nil
}

func (m *MemoryStore) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.objects, key)
	}
	return nil
}

func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
		}
	}
	return nil
}

// Object returns a copy of the stored bytes.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}
