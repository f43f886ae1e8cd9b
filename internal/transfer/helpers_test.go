package transfer_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/cache"
	"github.com/rohits-web03/codedrop/internal/models"
	"github.com/rohits-web03/codedrop/internal/repositories"
	"github.com/rohits-web03/codedrop/internal/storage"
	"github.com/rohits-web03/codedrop/internal/transfer"
)

var t0 = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type putCall struct {
	Key  string
	Size int64
	Opts storage.PutOptions
}

// recordingStore wraps a MemoryStore, records calls and injects failures.
type recordingStore struct {
	*storage.MemoryStore

	mu        sync.Mutex
	puts      []putCall
	lists     int
	failPut   func(key string) error
	failSign  func(key string) error
	failPurge func(prefix string) error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: storage.NewMemoryStore()}
}

func (s *recordingStore) Put(ctx context.Context, key string, body io.Reader, size int64, opts storage.PutOptions) error {
	s.mu.Lock()
	s.puts = append(s.puts, putCall{Key: key, Size: size, Opts: opts})
	fail := s.failPut
	s.mu.Unlock()
	if fail != nil {
		if err := fail(key); err != nil {
			return err
		}
	}
	return s.MemoryStore.Put(ctx, key, body, size, opts)
}

func (s *recordingStore) List(ctx context.Context, prefix string) ([]models.StoredFile, error) {
	s.mu.Lock()
	s.lists++
	s.mu.Unlock()
	return s.MemoryStore.List(ctx, prefix)
}

func (s *recordingStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.failSign != nil {
		if err := s.failSign(key); err != nil {
			return "", err
		}
	}
	return s.MemoryStore.SignedURL(ctx, key, ttl)
}

func (s *recordingStore) DeletePrefix(ctx context.Context, prefix string) error {
	if s.failPurge != nil {
		if err := s.failPurge(prefix); err != nil {
			return err
		}
	}
	return s.MemoryStore.DeletePrefix(ctx, prefix)
}

func (s *recordingStore) putsFor(key string) []putCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var calls []putCall
	for _, c := range s.puts {
		if c.Key == key || strings.HasPrefix(c.Key, key+".part") {
			calls = append(calls, c)
		}
	}
	return calls
}

func (s *recordingStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts) + s.lists
}

type fixture struct {
	manager *transfer.Manager
	blobs   *recordingStore
	repo    repositories.TransferRepository
	clock   *fakeClock
}

func newFixture(t *testing.T, opts transfer.Options) *fixture {
	t.Helper()
	db, err := repositories.ConnectDatabase("sqlite", filepath.Join(t.TempDir(), "transfers.db"), zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	f := &fixture{
		blobs: newRecordingStore(),
		repo:  repositories.NewTransferRepository(db),
		clock: &fakeClock{now: t0},
	}
	opts.Clock = f.clock
	var cacher cache.Cacher
	if opts.CacheTTL > 0 {
		cacher = cache.NewMemoryCache(1 << 20)
	}
	f.manager = transfer.NewManager(f.blobs, f.repo, cacher, opts)
	return f
}

func fixedCode(codes ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		code := codes[min(i, len(codes)-1)]
		i++
		return code
	}
}

func source(name string, data []byte) transfer.Source {
	return transfer.Source{Name: name, Size: int64(len(data)), Content: strings.NewReader(string(data))}
}

type listFailingStore struct {
	*recordingStore
}

func (s *listFailingStore) List(context.Context, string) ([]models.StoredFile, error) {
	return nil, errors.New("bucket unreachable")
}
