package storage

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/billrun/billrun/internal/config"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
)

// S3Storage keeps documents in a single S3 bucket. The "full path" it hands
// back is the object key, so Read works with what Save returned.
type S3Storage struct {
	client *s3.Client
	cfg    *config.S3Config
	logger *logger.Logger
}

// NewS3Storage builds the client from the ambient AWS credential chain
func NewS3Storage(cfg *config.S3Config, log *logger.Logger) (*S3Storage, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to load aws config").
			Mark(ierr.ErrSystem)
	}

	return &S3Storage{
		client: s3.NewFromConfig(awsCfg),
		cfg:    cfg,
		logger: log,
	}, nil
}

func (s *S3Storage) objectKey(basePath, fileName string) string {
	parts := make([]string, 0, 3)
	if s.cfg.KeyPrefix != "" {
		parts = append(parts, s.cfg.KeyPrefix)
	}
	if basePath != "" {
		parts = append(parts, strings.Trim(basePath, "/"))
	}
	parts = append(parts, fileName)
	return path.Join(parts...)
}

// Save implements Storage
func (s *S3Storage) Save(ctx context.Context, data []byte, basePath, fileName string) (string, error) {
	key := s.objectKey(basePath, fileName)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("failed to upload document").
			WithMessagef("bucket:%s, key:%s", s.cfg.Bucket, key).
			Mark(ierr.ErrHTTPClient)
	}

	s.logger.Debugw("uploaded object", "bucket", s.cfg.Bucket, "key", key, "bytes", len(data))
	return key, nil
}

// Read implements Storage
func (s *S3Storage) Read(ctx context.Context, fullPath string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(fullPath),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to get document").
			WithMessagef("bucket:%s, key:%s", s.cfg.Bucket, fullPath).
			Mark(ierr.ErrHTTPClient)
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

// EnsureDirectory implements Storage. S3 has no directories, so this only
// verifies the bucket is reachable.
func (s *S3Storage) EnsureDirectory(ctx context.Context, _ string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.cfg.Bucket),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("bucket %s is not reachable", s.cfg.Bucket).
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}
