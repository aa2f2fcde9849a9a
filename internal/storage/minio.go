package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sh3r4rd/upload_reports/internal/config"
	apperrors "github.com/sh3r4rd/upload_reports/internal/errors"
)

// MinioStore serves the same operations as S3Store against any S3-compatible
// endpoint (MinIO, LocalStack) for local runs.
type MinioStore struct {
	client *minio.Client
}

// NewMinioClient initializes a MinIO client from the storage config.
func NewMinioClient(cfg config.StorageConfig) (*minio.Client, error) {
	return minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSSL,
	})
}

// NewMinioStore wraps a MinIO client.
func NewMinioStore(client *minio.Client) *MinioStore {
	return &MinioStore{client: client}
}

// GetObject reads the whole object body.
func (m *MinioStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyMinio(err, fmt.Sprintf("get %s/%s", bucket, key))
	}
	defer obj.Close()

	// The object is fetched lazily; a missing key surfaces on the first read.
	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, classifyMinio(err, fmt.Sprintf("read %s/%s", bucket, key))
	}
	return body, nil
}

// PutObject writes body with the given content type.
func (m *MinioStore) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return classifyMinio(err, fmt.Sprintf("put %s/%s", bucket, key))
	}
	return nil
}

func classifyMinio(err error, message string) error {
	if resp := minio.ToErrorResponse(err); resp.Code != "" {
		return apperrors.Wrap(apperrors.CodeStorageAccess, err, message+": "+resp.Message)
	}
	return apperrors.Wrap(apperrors.CodeInternal, err, message)
}
