// Package transfer implements the transfer lifecycle: a batch of files is
// chunk-uploaded under a fresh access code, registered with a 24 hour expiry,
// resolved to signed download URLs while it lives, and swept once it expires.
package transfer

import (
	"time"

	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/cache"
	"github.com/rohits-web03/codedrop/internal/repositories"
	"github.com/rohits-web03/codedrop/internal/storage"
)

const (
	DefaultTTL          = 24 * time.Hour
	DefaultChunkSize    = 10 << 20
	DefaultSignedURLTTL = 300 * time.Second

	maxCodeAttempts = 5
)

type Options struct {
	TTL               time.Duration
	ChunkSize         int64
	SignedURLTTL      time.Duration
	UploadParallelism int // <= 0 means unbounded
	CacheTTL          time.Duration

	// IsolateSweepFailures keeps sweeping past a transfer whose blobs could not be deleted.
	IsolateSweepFailures bool

	Clock        Clock
	GenerateCode func() string
	Logger       *zap.Logger
}

// Manager owns the transfer lifecycle on top of a blob store and a metadata store.
type Manager struct {
	blobs     storage.BlobStore
	transfers repositories.TransferRepository
	cache     cache.Cacher
	opts      Options
	clock     Clock
	log       *zap.Logger
}

// NewManager wires the lifecycle to its stores. A nil cacher disables lookup caching.
func NewManager(blobs storage.BlobStore, transfers repositories.TransferRepository, cacher cache.Cacher, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = DefaultSignedURLTTL
	}
	if opts.UploadParallelism <= 0 {
		opts.UploadParallelism = -1
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.GenerateCode == nil {
		opts.GenerateCode = GenerateCode
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if cacher == nil || opts.CacheTTL <= 0 {
		cacher = cache.Noop{}
	}
	return &Manager{
		blobs:     blobs,
		transfers: transfers,
		cache:     cacher,
		opts:      opts,
		clock:     opts.Clock,
		log:       opts.Logger,
	}
}

func (m *Manager) now() time.Time {
	return m.clock.Now().UTC()
}

func transferCacheKey(code string) string {
	return cache.Key("transfer", code)
}
