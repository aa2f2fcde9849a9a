package model

import "time"

// UploadRecord represents a single item in the upload metadata DynamoDB table.
// Key is the partition key; a second write for the same key replaces the item.
type UploadRecord struct {
	Key          string `dynamodbav:"key"`
	URI          string `dynamodbav:"uri"`
	ObjectSize   string `dynamodbav:"object_size"`
	ObjectType   string `dynamodbav:"object_type"`
	ThumbnailURL string `dynamodbav:"thumbnail_url"`
	UploadDate   string `dynamodbav:"upload_date"`
}

// HasThumbnail reports whether a thumbnail was generated for the record.
func (r UploadRecord) HasThumbnail() bool {
	return r.ThumbnailURL != "" && r.ThumbnailURL != NotAvailable
}

// Stamp sets UploadDate to t in the table's sortable timestamp layout.
func (r *UploadRecord) Stamp(t time.Time) {
	r.UploadDate = FormatTimestamp(t)
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ObjectURI builds the s3:// locator of an object.
func ObjectURI(bucket, key string) string {
	return URIScheme + bucket + "/" + key
}
