package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

var ErrStorageDisabled = errors.New("object storage not configured")

// Storage stores uploaded media.
type Storage interface {
	// Upload writes r under prefix/<uuid><ext> and returns its public URL and key.
	Upload(ctx context.Context, prefix, filename string, r io.Reader, size int64, contentType string) (string, string, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MinioStorage keeps media in a single MinIO bucket.
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStorage returns nil when client is nil so callers can detect a
// disabled store with a plain nil check.
func NewMinioStorage(client *minio.Client, bucket, endpoint, publicURL string, secure bool) Storage {
	if client == nil {
		return nil
	}
	if publicURL == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
	}
	return &MinioStorage{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectKey builds a collision free key keeping a known image extension.
func ObjectKey(prefix, filename, contentType string) (string, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	if e := strings.ToLower(path.Ext(filename)); e == ".jpeg" || e == ext {
		ext = e
	}
	return path.Join(prefix, uuid.NewString()+ext), nil
}

func (s *MinioStorage) Upload(ctx context.Context, prefix, filename string, r io.Reader, size int64, contentType string) (string, string, error) {
	key, err := ObjectKey(prefix, filename, contentType)
	if err != nil {
		return "", "", err
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}
	return s.publicURL + "/" + key, key, nil
}

func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinioStorage) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
