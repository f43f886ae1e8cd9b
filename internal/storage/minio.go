package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/config"
	"github.com/rohits-web03/codedrop/internal/models"
)

// minioAPI is the subset of *minio.Client the store calls.
type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	ComposeObject(ctx context.Context, dst minio.CopyDestOptions, srcs ...minio.CopySrcOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError
}

// MinioStore implements BlobStore on a MinIO server.
type MinioStore struct {
	client     minioAPI
	bucketName string
	log        *zap.Logger
}

// NewMinioStore connects to MinIO and creates the bucket when it is missing.
func NewMinioStore(ctx context.Context, cfg config.MinioConfig, log *zap.Logger) (*MinioStore, error) {
	log.Info("initializing minio client", zap.String("endpoint", cfg.Endpoint))

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init minio client")
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, errors.Wrapf(err, "check bucket %q", cfg.BucketName)
	}
	if !exists {
		log.Info("bucket not found, creating", zap.String("bucket", cfg.BucketName))
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, errors.Wrapf(err, "create bucket %q", cfg.BucketName)
		}
	}

	return &MinioStore{client: client, bucketName: cfg.BucketName, log: log}, nil
}

func (m *MinioStore) Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) error {
	if !opts.Overwrite {
		_, err := m.client.StatObject(ctx, m.bucketName, key, minio.StatObjectOptions{})
		if err == nil {
			return errors.Wrap(ErrAlreadyExists, key)
		}
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return errors.Wrapf(err, "stat %s", key)
		}
	}
	if len(opts.Parts) > 0 {
		return m.compose(ctx, key, body, size, opts)
	}

	info, err := m.client.PutObject(ctx, m.bucketName, key, body, size, minio.PutObjectOptions{
		CacheControl: "max-age=3600",
	})
	if err != nil {
		return errors.Wrapf(err, "put %s", key)
	}
	m.log.Debug("put object", zap.String("key", key), zap.Int64("size", info.Size), zap.String("etag", info.ETag))
	return nil
}

// compose stores body as the trailing part, then stitches all parts into key.
func (m *MinioStore) compose(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) error {
	tail := PartKey(key, opts.Offset)
	if _, err := m.client.PutObject(ctx, m.bucketName, tail, body, size, minio.PutObjectOptions{}); err != nil {
		return errors.Wrapf(err, "put tail %s", tail)
	}

	srcs := make([]minio.CopySrcOptions, 0, len(opts.Parts)+1)
	for _, part := range opts.Parts {
		srcs = append(srcs, minio.CopySrcOptions{Bucket: m.bucketName, Object: part})
	}
	srcs = append(srcs, minio.CopySrcOptions{Bucket: m.bucketName, Object: tail})

	_, err := m.client.ComposeObject(ctx, minio.CopyDestOptions{Bucket: m.bucketName, Object: key}, srcs...)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return errors.Wrap(ErrObjectNotFound, key)
		}
		return errors.Wrapf(err, "compose %s", key)
	}
	if err := m.client.RemoveObject(ctx, m.bucketName, tail, minio.RemoveObjectOptions{}); err != nil {
		m.log.Warn("remove tail part failed", zap.String("key", tail), zap.Error(err))
	}
	return nil
}

func (m *MinioStore) List(ctx context.Context, prefix string) ([]models.StoredFile, error) {
	files := make([]models.StoredFile, 0)
	for obj := range m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrapf(obj.Err, "list %s", prefix)
		}
		files = append(files, models.StoredFile{
			Key:  obj.Key,
			Name: strings.TrimPrefix(obj.Key, prefix),
			Size: obj.Size,
		})
	}
	return files, nil
}

func (m *MinioStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucketName, key, ttl, url.Values{})
	if err != nil {
		return "", errors.Wrapf(err, "presign %s", key)
	}
	return u.String(), nil
}

func (m *MinioStore) Remove(ctx context.Context, keys ...string) error {
	objects := make(chan minio.ObjectInfo)
	go func() {
		defer close(objects)
		for _, key := range keys {
			select {
			case objects <- minio.ObjectInfo{Key: key}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var first error
	for rErr := range m.client.RemoveObjects(ctx, m.bucketName, objects, minio.RemoveObjectsOptions{}) {
		if first == nil {
			first = errors.Wrapf(rErr.Err, "remove %s", rErr.ObjectName)
		}
	}
	return first
}

func (m *MinioStore) DeletePrefix(ctx context.Context, prefix string) error {
	files, err := m.List(ctx, prefix)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(files))
	for _, f := range files {
		keys = append(keys, f.Key)
	}
	return m.Remove(ctx, keys...)
}
