package storage

import (
	"bytes"
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/utils/safe"
)

type s3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
}

// NewS3 creates a Service backed by Amazon S3
func NewS3(client *s3.Client) Service {
	return &s3Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
	}
}

func (x *s3Storage) Put(ctx context.Context, input *PutInput) error {
	req := &s3.PutObjectInput{
		Bucket:   aws.String(input.Bucket),
		Key:      aws.String(input.Key),
		Body:     bytes.NewReader(input.Body),
		Metadata: input.Metadata,
	}
	if input.ContentType != "" {
		req.ContentType = aws.String(input.ContentType)
	}

	if _, err := x.client.PutObject(ctx, req); err != nil {
		return goerr.Wrap(err, "failed to put S3 object",
			goerr.V("bucket", input.Bucket),
			goerr.V("key", input.Key))
	}
	return nil
}

func (x *s3Storage) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := x.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, goerr.Wrap(ErrObjectNotFound, "S3 object not found",
				goerr.V("bucket", bucket),
				goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get S3 object",
			goerr.V("bucket", bucket),
			goerr.V("key", key))
	}

	data, err := safe.ReadAll(ctx, out.Body, maxObjectSize)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read S3 object",
			goerr.V("bucket", bucket),
			goerr.V("key", key))
	}
	return data, nil
}

func (x *s3Storage) PresignPut(ctx context.Context, input *PresignInput) (string, error) {
	req, err := x.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(input.Bucket),
		Key:      aws.String(input.Key),
		Metadata: input.Metadata,
	}, s3.WithPresignExpires(input.Expires))
	if err != nil {
		return "", goerr.Wrap(err, "failed to presign S3 put",
			goerr.V("bucket", input.Bucket),
			goerr.V("key", input.Key))
	}
	return req.URL, nil
}

func (x *s3Storage) URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}

func isS3NotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
