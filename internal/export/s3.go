package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putObjectAPI is the part of *s3.Client the writer needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Writer buffers the export and uploads it on Close.
type S3Writer struct {
	ctx    context.Context
	client putObjectAPI
	bucket string
	key    string
	buffer bytes.Buffer
}

// NewS3Writer loads the default AWS configuration (env, shared files,
// instance role).  An empty region keeps whatever that configuration says.
func NewS3Writer(ctx context.Context, region, bucket, key string) (*S3Writer, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newS3Writer(ctx, s3.NewFromConfig(cfg), bucket, key), nil
}

func newS3Writer(ctx context.Context, client putObjectAPI, bucket, key string) *S3Writer {
	return &S3Writer{ctx: ctx, client: client, bucket: bucket, key: key}
}

func (w *S3Writer) Write(data []byte) (int, error) {
	return w.buffer.Write(data)
}

func (w *S3Writer) Close() error {
	contentType := "application/json"
	if FormatFor(w.key) == FormatYAML {
		contentType = "application/yaml"
	}
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(w.key),
		Body:        bytes.NewReader(w.buffer.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}

// ParseS3URL splits "s3://bucket/key".
func ParseS3URL(s string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(s, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
