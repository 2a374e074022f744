package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// =============================================================================
// R2Storage Implementation
// =============================================================================

// objectAPI is the subset of the S3 client used by R2Storage.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// R2Storage implements the Storage interface using Cloudflare R2 through the
// S3-compatible API.
type R2Storage struct {
	client     objectAPI
	bucketName string
	logger     *slog.Logger
}

// NewR2Storage creates an R2Storage. The endpoint is derived from the account
// ID unless cfg.Endpoint is set.
func NewR2Storage(cfg R2Config, logger *slog.Logger) (*R2Storage, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("R2 bucket name is required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		if cfg.AccountID == "" {
			return nil, fmt.Errorf("R2 account ID is required")
		}
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	awsCfg := aws.Config{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token not needed for R2
		),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	logger.Info("initialized R2 storage",
		"bucket", cfg.BucketName,
		"endpoint", endpoint,
	)

	return newR2Storage(client, cfg.BucketName, logger), nil
}

func newR2Storage(client objectAPI, bucket string, logger *slog.Logger) *R2Storage {
	return &R2Storage{
		client:     client,
		bucketName: bucket,
		logger:     logger,
	}
}

// Put uploads data to key.
func (s *R2Storage) Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error {
	if err := validateKey(key); err != nil {
		return &ObjectError{Op: "Put", Key: key, Err: err}
	}

	if !opts.Overwrite {
		exists, err := s.Exists(ctx, key)
		if err != nil {
			return &ObjectError{Op: "Put", Key: key, Err: fmt.Errorf("failed to check existence: %w", err)}
		}
		if exists {
			return &ObjectError{Op: "Put", Key: key, Err: ErrKeyExists}
		}
	}

	// Archive documents are small; buffering gives the SDK a seekable body
	// and lets us enforce MaxSize before uploading.
	limit := opts.MaxSize
	reader := data
	if limit > 0 {
		reader = io.LimitReader(data, limit+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return &ObjectError{Op: "Put", Key: key, Err: fmt.Errorf("failed to read data: %w", err)}
	}
	if limit > 0 && int64(len(body)) > limit {
		return &ObjectError{Op: "Put", Key: key, Err: ErrTooLarge}
	}

	contentType := contentTypeFor(opts.ContentType, key)
	result, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return &ObjectError{Op: "Put", Key: key, Err: wrapS3Error(err)}
	}

	s.logger.Debug("stored object in R2",
		"key", key,
		"etag", aws.ToString(result.ETag),
		"content_type", contentType,
	)
	return nil
}

// Get downloads the object at key.
func (s *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := validateKey(key); err != nil {
		return nil, ObjectInfo{}, &ObjectError{Op: "Get", Key: key, Err: err}
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, &ObjectError{Op: "Get", Key: key, Err: wrapS3Error(err)}
	}

	info := ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(result.ContentLength),
		ContentType:  aws.ToString(result.ContentType),
		LastModified: aws.ToTime(result.LastModified),
		ETag:         aws.ToString(result.ETag),
	}
	return result.Body, info, nil
}

// Delete removes the object at key. S3 does not fail on missing keys.
func (s *R2Storage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return &ObjectError{Op: "Delete", Key: key, Err: err}
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return &ObjectError{Op: "Delete", Key: key, Err: wrapS3Error(err)}
	}

	s.logger.Debug("deleted object from R2", "key", key)
	return nil
}

// Exists issues a HEAD request for key.
func (s *R2Storage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, &ObjectError{Op: "Exists", Key: key, Err: err}
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if errors.Is(wrapS3Error(err), ErrNotFound) {
			return false, nil
		}
		return false, &ObjectError{Op: "Exists", Key: key, Err: wrapS3Error(err)}
	}
	return true, nil
}

// List pages through ListObjectsV2 for prefix.
func (s *R2Storage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &ObjectError{Op: "List", Key: prefix, Err: wrapS3Error(err)}
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			out = append(out, ObjectInfo{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				ContentType:  contentTypeFor("", key),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
			})
		}
	}
	return out, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// validateKey rejects empty keys and keys with path traversal.
func validateKey(key string) error {
	if key == "" || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

// wrapS3Error converts S3 SDK errors to storage sentinel errors.
func wrapS3Error(err error) error {
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return ErrNotFound
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return ErrNotFound
		case "AccessDenied", "Forbidden":
			return ErrAccessDenied
		}
	}

	var httpErr interface{ HTTPStatusCode() int }
	if errors.As(err, &httpErr) {
		switch httpErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusForbidden:
			return ErrAccessDenied
		}
	}

	return fmt.Errorf("R2 operation failed: %w", err)
}
