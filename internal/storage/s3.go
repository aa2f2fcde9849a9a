package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	apperrors "github.com/sh3r4rd/upload_reports/internal/errors"
)

// S3API is the part of *s3.Client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store reads and writes objects in Amazon S3.
type S3Store struct {
	client S3API
}

// NewS3Store wraps an S3 client.
func NewS3Store(client S3API) *S3Store {
	return &S3Store{client: client}
}

// GetObject reads the whole object body.
func (s *S3Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3(err, fmt.Sprintf("get s3://%s/%s", bucket, key))
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageAccess, err, fmt.Sprintf("read s3://%s/%s", bucket, key))
	}
	return body, nil
}

// PutObject writes body with the given content type.
func (s *S3Store) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return classifyS3(err, fmt.Sprintf("put s3://%s/%s", bucket, key))
	}
	return nil
}

// classifyS3 marks errors returned by the S3 API (NoSuchKey, AccessDenied, ...)
// as storage-access failures. Anything else stays internal.
func classifyS3(err error, message string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Wrap(apperrors.CodeStorageAccess, err, message+": "+apiErr.ErrorMessage())
	}
	return apperrors.Wrap(apperrors.CodeInternal, err, message)
}
