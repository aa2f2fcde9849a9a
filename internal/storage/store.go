// Package storage reads and writes objects in S3 or an S3-compatible endpoint.
package storage

import "context"

// ObjectStore is the subset of object storage used by the thumbnail generator.
// Failures reported by the storage service carry errors.CodeStorageAccess.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error
}
