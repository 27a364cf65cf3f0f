package storage

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ErrObjectNotFound is returned by Get when the key does not exist
var ErrObjectNotFound = goerr.New("object not found")

// maxObjectSize caps objects read into memory. Staged metadata and
// knowledge base documents are far smaller.
const maxObjectSize = 32 << 20

// Service is an object store addressed by bucket and key. Puts overwrite.
type Service interface {
	// Put writes an object, replacing any existing one at the key
	Put(ctx context.Context, input *PutInput) error

	// Get reads a whole object
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// PresignPut returns a URL that accepts a single PUT of the object until
	// expires elapses. Metadata is bound to the signature, so the uploader
	// must send it unchanged.
	PresignPut(ctx context.Context, input *PresignInput) (string, error)

	// URI returns the backend native URI of an object, as understood by the
	// transcription service
	URI(bucket, key string) string
}

// PutInput describes an object write
type PutInput struct {
	Bucket      string
	Key         string
	Body        []byte
	ContentType string
	Metadata    map[string]string
}

// PresignInput describes an upload URL request
type PresignInput struct {
	Bucket   string
	Key      string
	Expires  time.Duration
	Metadata map[string]string
}
