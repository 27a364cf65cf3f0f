package storage

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Object is an object held by the in-memory backend
type Object struct {
	Body        []byte
	ContentType string
	Metadata    map[string]string
}

// Memory is a process local Service for development and tests. Presigned
// URLs it returns are not reachable over the network.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]*Object
	puts    int
}

var _ Service = &Memory{}

// NewMemory creates an empty in-memory Service
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]*Object),
	}
}

func memoryKey(bucket, key string) string {
	return bucket + "/" + key
}

func (x *Memory) Put(ctx context.Context, input *PutInput) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	obj := &Object{
		Body:        append([]byte(nil), input.Body...),
		ContentType: input.ContentType,
	}
	if input.Metadata != nil {
		obj.Metadata = make(map[string]string, len(input.Metadata))
		for k, v := range input.Metadata {
			obj.Metadata[k] = v
		}
	}

	x.objects[memoryKey(input.Bucket, input.Key)] = obj
	x.puts++
	return nil
}

func (x *Memory) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	obj, ok := x.objects[memoryKey(bucket, key)]
	if !ok {
		return nil, goerr.Wrap(ErrObjectNotFound, "object not found",
			goerr.V("bucket", bucket),
			goerr.V("key", key))
	}
	return append([]byte(nil), obj.Body...), nil
}

func (x *Memory) PresignPut(ctx context.Context, input *PresignInput) (string, error) {
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(int64(input.Expires/time.Second), 10))
	for k, v := range input.Metadata {
		q.Set("meta-"+k, v)
	}

	u := url.URL{
		Scheme:   "memory",
		Host:     input.Bucket,
		Path:     "/" + input.Key,
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}

func (x *Memory) URI(bucket, key string) string {
	return "memory://" + bucket + "/" + key
}

// Object returns a copy of the stored object
func (x *Memory) Object(bucket, key string) (*Object, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	obj, ok := x.objects[memoryKey(bucket, key)]
	if !ok {
		return nil, false
	}
	copied := *obj
	copied.Body = append([]byte(nil), obj.Body...)
	return &copied, true
}

// PutCount returns the number of Put calls so far
func (x *Memory) PutCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.puts
}
