package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hanatsumi/rakuyomi/rerr"
)

// S3Mirror uploads chapter archives to an S3-compatible bucket, adapted
// from the teacher's filestore/s3.go client setup.
type S3Mirror struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Mirror builds a mirror against bucket, optionally scoping every
// object under prefix, and optionally pointing at an S3-compatible
// endpoint other than AWS's (MinIO, Backblaze B2, etc).
func NewS3Mirror(ctx context.Context, bucket, prefix, endpoint, region string) (*S3Mirror, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, rerr.New(rerr.Other, fmt.Errorf("loading aws config: %w", err))
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Mirror{client: client, bucket: bucket, prefix: prefix}, nil
}

func (m *S3Mirror) Upload(ctx context.Context, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return rerr.New(rerr.Other, err)
	}
	defer f.Close()

	key := filepath.Base(localPath)
	if m.prefix != "" {
		key = m.prefix + "/" + key
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return rerr.New(rerr.NetworkFailure, fmt.Errorf("uploading %s to s3: %w", key, err))
	}
	return nil
}
