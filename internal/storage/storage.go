// Package storage uploads photos to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/pablodelgado26/family-organizer/internal/config"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// PhotoStorage stores photo objects under per-group keys and hands back
// public URLs.
type PhotoStorage struct {
	client  s3Client
	bucket  string
	baseURL string
	logger  *slog.Logger
}

func New(cfg config.S3Config, logger *slog.Logger) *PhotoStorage {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return &PhotoStorage{
		client:  s3.New(opts),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		logger:  logger.With("component", "storage"),
	}
}

// Upload stores the photo bytes and returns the object key and public URL.
// Transient upload failures are retried with exponential backoff.
func (ps *PhotoStorage) Upload(ctx context.Context, groupID int64, filename, contentType string, data []byte) (key, url string, err error) {
	ext := strings.ToLower(path.Ext(filename))
	key = fmt.Sprintf("groups/%d/photos/%s%s", groupID, uuid.NewString(), ext)

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, putErr := ps.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(ps.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(int64(len(data))),
		})
		if putErr != nil {
			return retry.RetryableError(putErr)
		}
		return nil
	})
	if err != nil {
		return "", "", fmt.Errorf("upload photo: %w", err)
	}

	ps.logger.Info("photo uploaded", "key", key, "size", len(data))
	return key, ps.URL(key), nil
}

// Delete removes the object. Missing objects are not an error.
func (ps *PhotoStorage) Delete(ctx context.Context, key string) error {
	_, err := ps.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(ps.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete photo object: %w", err)
	}
	return nil
}

// URL returns the public URL for an object key.
func (ps *PhotoStorage) URL(key string) string {
	return ps.baseURL + "/" + key
}
