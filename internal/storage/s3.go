package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/rohits-web03/codedrop/internal/config"
	"github.com/rohits-web03/codedrop/internal/models"
)

// DeleteObjects accepts at most this many keys per call.
const maxDeleteBatch = 1000

// S3Store talks to AWS S3 or Cloudflare R2.
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	log       *zap.Logger
}

// NewS3Store initializes the client using static credentials and, for R2, the account endpoint.
func NewS3Store(cfg config.R2Config, log *zap.Logger) *S3Store {
	endpoint := cfg.Endpoint
	if endpoint == "" && cfg.AccountID != "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	log.Info("initialized s3 client", zap.String("bucket", cfg.BucketName), zap.String("endpoint", endpoint))

	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.BucketName,
		log:       log,
	}
}

func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) error {
	if len(opts.Parts) > 0 {
		return s.compose(ctx, key, body, size, opts.Parts)
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("max-age=3600"),
	}
	if !opts.Overwrite {
		in.IfNoneMatch = aws.String("*")
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		if isAPIError(err, "PreconditionFailed") {
			return errors.Wrap(ErrAlreadyExists, key)
		}
		return errors.Wrapf(err, "put %s", key)
	}
	s.log.Debug("put object", zap.String("key", key), zap.Int64("size", size))
	return nil
}

// compose builds key server-side from the already uploaded parts plus body.
func (s *S3Store) compose(ctx context.Context, key string, body io.Reader, size int64, parts []string) error {
	created, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return errors.Wrapf(err, "start multipart upload %s", key)
	}
	uploadID := created.UploadId

	abort := func(cause error) error {
		_, abortErr := s.client.AbortMultipartUpload(context.WithoutCancel(ctx), &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(s.bucket),
			Key:      aws.String(key),
			UploadId: uploadID,
		})
		if abortErr != nil {
			s.log.Warn("abort multipart upload failed", zap.String("key", key), zap.Error(abortErr))
		}
		return cause
	}

	completed := make([]s3types.CompletedPart, 0, len(parts)+1)
	for i, part := range parts {
		number := aws.Int32(int32(i + 1))
		out, err := s.client.UploadPartCopy(ctx, &s3.UploadPartCopyInput{
			Bucket:     aws.String(s.bucket),
			Key:        aws.String(key),
			UploadId:   uploadID,
			PartNumber: number,
			CopySource: aws.String(copySource(s.bucket, part)),
		})
		if err != nil {
			if isAPIError(err, "NoSuchKey") {
				return abort(errors.Wrap(ErrObjectNotFound, part))
			}
			return abort(errors.Wrapf(err, "copy part %s", part))
		}
		completed = append(completed, s3types.CompletedPart{ETag: out.CopyPartResult.ETag, PartNumber: number})
	}

	number := aws.Int32(int32(len(parts) + 1))
	out, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		UploadId:      uploadID,
		PartNumber:    number,
		Body:          body,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return abort(errors.Wrapf(err, "upload final part %s", key))
	}
	completed = append(completed, s3types.CompletedPart{ETag: out.ETag, PartNumber: number})

	_, err = s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(key),
		UploadId:        uploadID,
		MultipartUpload: &s3types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return abort(errors.Wrapf(err, "complete multipart upload %s", key))
	}
	s.log.Debug("composed object", zap.String("key", key), zap.Int("parts", len(completed)))
	return nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]models.StoredFile, error) {
	files := make([]models.StoredFile, 0)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "list %s", prefix)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			files = append(files, models.StoredFile{
				Key:  key,
				Name: strings.TrimPrefix(key, prefix),
				Size: aws.ToInt64(obj.Size),
			})
		}
	}
	return files, nil
}

// SignedURL creates a presigned URL for downloading key.
func (s *S3Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", errors.Wrapf(err, "presign %s", key)
	}
	return req.URL, nil
}

func (s *S3Store) Remove(ctx context.Context, keys ...string) error {
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))
		ids := make([]s3types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			ids = append(ids, s3types.ObjectIdentifier{Key: aws.String(key)})
		}
		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return errors.Wrap(err, "delete objects")
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return errors.Errorf("delete %s: %s", aws.ToString(first.Key), aws.ToString(first.Message))
		}
	}
	return nil
}

func (s *S3Store) DeletePrefix(ctx context.Context, prefix string) error {
	files, err := s.List(ctx, prefix)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(files))
	for _, f := range files {
		keys = append(keys, f.Key)
	}
	if err := s.Remove(ctx, keys...); err != nil {
		return err
	}
	s.log.Debug("deleted prefix", zap.String("prefix", prefix), zap.Int("objects", len(keys)))
	return nil
}

func copySource(bucket, key string) string {
	return (&url.URL{Path: bucket + "/" + key}).EscapedPath()
}

func isAPIError(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}
