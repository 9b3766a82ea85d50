// Package objectstore реализует хранение скриншотов платежей
// в S3-совместимом хранилище (MinIO).
package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kunalverma25/wifi-portal/internal/config"
)

// Разрешённые типы изображений для скриншотов.
var allowedContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// Store инкапсулирует клиент MinIO и настройки bucket.
type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// New создаёт клиент MinIO и гарантирует существование bucket.
func New(ctx context.Context, cfg config.ObjectStore) (*Store, error) {
	const op = "objectstore.New"

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// UploadScreenshot сохраняет изображение и возвращает публичный URL.
// Имя объекта строится из uid пользователя, даты и случайного суффикса.
func (s *Store) UploadScreenshot(ctx context.Context, userUID string, reader io.Reader, size int64, contentType string) (string, error) {
	const op = "objectstore.UploadScreenshot"

	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%s: unsupported content type %s", op, contentType)
	}

	objectName := path.Join(userUID,
		time.Now().UTC().Format("2006-01"),
		uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.publicURL + "/" + s.bucket + "/" + objectName, nil
}

// RemoveByURL удаляет объект по публичному URL, выданному при загрузке.
// Используется при удалении платежа со скриншотом.
func (s *Store) RemoveByURL(ctx context.Context, fileURL string) error {
	const op = "objectstore.RemoveByURL"

	prefix := s.publicURL + "/" + s.bucket + "/"
	objectName, found := strings.CutPrefix(fileURL, prefix)
	if !found {
		return fmt.Errorf("%s: url %q does not belong to bucket %s", op, fileURL, s.bucket)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
