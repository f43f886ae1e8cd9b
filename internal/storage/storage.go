// Package storage holds the blob store contract and its backends.
//
// Keys are hierarchical, "{code}/{name}" for a finished file and
// "{code}/{name}.part{offset}" for a chunk that is not the last one.
package storage

import (
	"context"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/rohits-web03/codedrop/internal/models"
)

var (
	ErrObjectNotFound = errors.New("object not found in storage")
	ErrAlreadyExists  = errors.New("object already exists in storage")
)

// PutOptions controls a single write.
type PutOptions struct {
	// Overwrite replaces an existing object. When false the write fails with ErrAlreadyExists.
	Overwrite bool
	// Parts lists previously written chunk keys, in order. The stored object becomes
	// their concatenation followed by the body.
	Parts []string
	// Offset is the position of the body within the final object.
	Offset int64
}

// BlobStore is the object storage a transfer's files live in.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) error
	// List returns every object under prefix, Name relative to prefix.
	List(ctx context.Context, prefix string) ([]models.StoredFile, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

var partSuffix = regexp.MustCompile(`\.part\d+$`)

// Prefix is the namespace of every blob belonging to code.
func Prefix(code string) string {
	return code + "/"
}

func FileKey(code, name string) string {
	return Prefix(code) + name
}

func PartKey(key string, offset int64) string {
	return key + ".part" + strconv.FormatInt(offset, 10)
}

// IsPartKey reports whether key names an intermediate chunk rather than a finished file.
func IsPartKey(key string) bool {
	return partSuffix.MatchString(key)
}
