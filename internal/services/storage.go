package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"foliosh/folio-api/internal/config"
)

// StorageService stores uploaded resume PDFs in an S3-compatible bucket and
// hands out the public URL the extractor later fetches.
type StorageService interface {
	Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	ObjectKeyFromURL(fileURL string) (string, bool)
}

type storageService struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewStorageService(cfg config.StorageConfig) (StorageService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &storageService{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicEndpoint, "/"),
	}, nil
}

// Upload implements StorageService and returns the object's public URL.
func (s *storageService) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectKey), nil
}

// Delete implements StorageService. Removing a missing object is not an
// error, so repeated cleanup is safe.
func (s *storageService) Delete(ctx context.Context, objectKey string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove object: %w", err)
	}

	slog.Debug("object removed", "bucket", s.bucket, "key", objectKey)
	return nil
}

// ObjectKeyFromURL recovers the bucket-relative object key from a public URL
// produced by Upload. Returns false for URLs pointing elsewhere.
func (s *storageService) ObjectKeyFromURL(fileURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", s.publicURL, s.bucket)
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}

	key := strings.TrimPrefix(fileURL, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}
