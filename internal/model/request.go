package model

import (
	"net/url"
	"strconv"
	"strings"
)

// UploadEvent is the S3 ObjectCreated notification delivered to the upload processor.
type UploadEvent struct {
	Records []UploadNotification `json:"Records"`
}

// UploadNotification is one record of an UploadEvent.
type UploadNotification struct {
	EventSource string   `json:"eventSource"`
	AWSRegion   string   `json:"awsRegion"`
	EventName   string   `json:"eventName"`
	S3          S3Entity `json:"s3"`
}

type S3Entity struct {
	Bucket S3Bucket `json:"bucket"`
	Object S3Object `json:"object"`
}

type S3Bucket struct {
	Name string `json:"name"`
}

// S3Object carries the object key as S3 sends it (URL-encoded) and an optional size.
type S3Object struct {
	Key  string `json:"key"`
	Size *int64 `json:"size,omitempty"`
}

// Bucket returns the bucket name.
func (n UploadNotification) Bucket() string {
	return n.S3.Bucket.Name
}

// ObjectKey returns the decoded object key. Keys that fail to decode are returned as sent.
func (n UploadNotification) ObjectKey() string {
	key, err := url.QueryUnescape(n.S3.Object.Key)
	if err != nil {
		return n.S3.Object.Key
	}
	return key
}

// SizeString renders the object size as "<n> bytes", or NotAvailable when absent.
func (n UploadNotification) SizeString() string {
	if n.S3.Object.Size == nil {
		return NotAvailable
	}
	return strconv.FormatInt(*n.S3.Object.Size, 10) + " bytes"
}

// ObjectType returns the text after the last dot of key, case preserved.
// A key without a dot yields the whole key.
func ObjectType(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[i+1:]
	}
	return key
}
