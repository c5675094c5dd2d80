package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/arkilian/readbench/internal/report"
)

const (
	// ReportContentType is set on every published run report.
	ReportContentType = "application/json"

	// SnappyContentEncoding marks reports stored as snappy blocks.
	SnappyContentEncoding = "x-snappy-block"
)

// S3Storage publishes run reports to an S3 bucket or an S3-compatible store.
type S3Storage struct {
	client     *s3.Client
	bucket     string
	maxRetries int
	backoff    time.Duration
}

// S3Config holds configuration for S3 storage.
type S3Config struct {
	// Region is the AWS region for the S3 bucket.
	Region string
	// Endpoint is an optional custom endpoint (MinIO, LocalStack).
	Endpoint string
	// UsePathStyle addresses objects as endpoint/bucket/key.
	UsePathStyle bool
}

// DefaultS3Config returns the default S3 configuration.
func DefaultS3Config() S3Config {
	return S3Config{
		Region: "us-east-1",
	}
}

// NewS3Storage creates a report store using the default AWS credential chain.
func NewS3Storage(ctx context.Context, bucket string, cfg S3Config) (*S3Storage, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3StorageWithClient(client, bucket), nil
}

// NewS3StorageWithClient creates a report store with a pre-configured client.
func NewS3StorageWithClient(client *s3.Client, bucket string) *S3Storage {
	return &S3Storage{
		client:     client,
		bucket:     bucket,
		maxRetries: 3,
		backoff:    100 * time.Millisecond,
	}
}

// Upload puts the report file at localPath under objectPath. Snappy reports
// carry SnappyContentEncoding so readers know to decode the block first.
func (s *S3Storage) Upload(ctx context.Context, localPath, objectPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectPath),
		ContentType:   aws.String(ReportContentType),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if strings.HasSuffix(objectPath, report.CompressedSuffix) {
		input.ContentEncoding = aws.String(SnappyContentEncoding)
	}

	err = s.retryWithBackoff(ctx, func() error {
		input.Body = bytes.NewReader(data)
		_, err := s.client.PutObject(ctx, input)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: s3://%s/%s: %v", ErrUploadFailed, s.bucket, objectPath, err)
	}
	return nil
}

// Exists reports whether objectPath is already present in the bucket. A
// missing object is not an error.
func (s *S3Storage) Exists(ctx context.Context, objectPath string) (bool, error) {
	var exists bool
	err := s.retryWithBackoff(ctx, func() error {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectPath),
		})
		if err != nil {
			var notFound *types.NotFound
			if errors.As(err, &notFound) {
				exists = false
				return nil
			}
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// retryWithBackoff runs operation up to maxRetries+1 times, doubling the wait
// after each failure.
func (s *S3Storage) retryWithBackoff(ctx context.Context, operation func() error) error {
	var lastErr error
	wait := s.backoff
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}
	}
	return lastErr
}
