package model

import (
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Storage layout. Every stage derives its object keys from the task ID
// through the helpers below and nowhere else.
const (
	StagedMetadataPrefix = "media-metadata/"
	UploadPrefix         = "media-uploads/"
	TranscriptPrefix     = "transcripts/"
	SidecarSuffix        = ".metadata.json"
)

// StagedMetadataKey returns the upload bucket key of the staged metadata
func StagedMetadataKey(id TaskID) string {
	return StagedMetadataPrefix + string(id)
}

// UploadKey returns the upload bucket key of the uploaded media
func UploadKey(id TaskID) string {
	return UploadPrefix + string(id)
}

// TranscriptKey returns the knowledge base bucket key of the transcript text
func TranscriptKey(id TaskID) string {
	return TranscriptPrefix + string(id)
}

// SidecarKey returns the knowledge base bucket key of the metadata sidecar.
// The indexer pairs it with TranscriptKey by the suffix.
func SidecarKey(id TaskID) string {
	return TranscriptKey(id) + SidecarSuffix
}

// TaskIDFromUploadKey extracts the task ID from an uploaded object key.
// Keys must be exactly media-uploads/<task_id>; nested prefixes, other
// prefixes and empty IDs are rejected with ErrMalformedUploadKey.
func TaskIDFromUploadKey(key string) (TaskID, error) {
	rest, ok := strings.CutPrefix(key, UploadPrefix)
	if !ok {
		return "", goerr.Wrap(ErrMalformedUploadKey, "object key does not start with upload prefix",
			goerr.V(ObjectKeyKey, key))
	}
	if rest == "" || strings.Contains(rest, "/") {
		return "", goerr.Wrap(ErrMalformedUploadKey, "object key must have exactly one segment after upload prefix",
			goerr.V(ObjectKeyKey, key))
	}

	id := TaskID(rest)
	if err := id.Validate(); err != nil {
		return "", goerr.Wrap(ErrMalformedUploadKey, err.Error(), goerr.V(ObjectKeyKey, key))
	}
	return id, nil
}

// DecodeEventKey undoes the form encoding S3 applies to object keys in event
// notifications.
func DecodeEventKey(key string) (string, error) {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return "", goerr.Wrap(ErrMalformedUploadKey, "object key is not form encoded",
			goerr.V(ObjectKeyKey, key))
	}
	return decoded, nil
}
