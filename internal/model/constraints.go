package model

import "strings"

// Domain constants shared across the processor, metadata, and digest packages.
const (
	NotAvailable = "N/A"
	URIScheme    = "s3://"

	// TimestampLayout is fixed width so stored strings sort chronologically.
	TimestampLayout = "2006-01-02T15:04:05.000000Z"

	ThumbnailSuffix      = "_thumbnail"
	ThumbnailExtension   = ".jpg"
	ThumbnailContentType = "image/jpeg"
)

var imageTypes = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// IsImageType reports whether objectType (a file extension without the dot)
// is eligible for a thumbnail. The comparison ignores case.
func IsImageType(objectType string) bool {
	_, ok := imageTypes[strings.ToLower(objectType)]
	return ok
}
