package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/localloop/classifieds-service/internal/platform/logger"
)

// Storage keeps listing images in a MinIO bucket and addresses them by their
// public URL.
type Storage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *logger.Logger
}

func NewStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool, log *logger.Logger) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(context.Background(), bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", bucket, err, existsErr)
		}
	}

	log.Info("S3 storage initialized", "endpoint", endpoint, "bucket", bucket, "use_ssl", useSSL)
	return &Storage{
		client:  client,
		bucket:  bucket,
		baseURL: client.EndpointURL().String(),
		logger:  log,
	}, nil
}

// Upload stores one image under a key scoped to the author, with an upload
// timestamp plus random suffix so concurrent uploads never collide. Returns
// the fetchable URL.
func (s *Storage) Upload(ctx context.Context, authorID, fileName string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = extensionFor(contentType)
	}
	objectKey := fmt.Sprintf("listings/%s/%d-%s%s", authorID, time.Now().UnixNano(), uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-filename": fileName,
		},
	})
	if err != nil {
		s.logger.Error("Storage.Upload: PutObject failed", "bucket", s.bucket, "key", objectKey, "error", err.Error())
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, objectKey)
	s.logger.Debug("Storage.Upload: object stored", "key", objectKey, "url", url, "size_bytes", len(data))
	return url, nil
}

// Delete removes the object behind a URL. An object that is already gone is
// a success, and URLs outside this bucket (externally hosted images) are
// skipped rather than failed.
func (s *Storage) Delete(ctx context.Context, url string) error {
	objectKey, ok := s.objectKey(url)
	if !ok {
		s.logger.Debug("Storage.Delete: url is not in this bucket, skipping", "url", url)
		return nil
	}

	err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", objectKey, s.bucket, err)
	}
	return nil
}

func (s *Storage) objectKey(url string) (string, bool) {
	prefix := s.baseURL + "/" + s.bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
