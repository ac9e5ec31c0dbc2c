package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sentiment-health/api-go/config"
)

type S3Store struct {
	Client *s3.Client
	Bucket string
}

func NewS3Store(cfg config.StorageConfig) *S3Store {
	opts := s3.Options{
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return &S3Store{
		Client: s3.New(opts),
		Bucket: cfg.Bucket,
	}
}

// Save buffers the image so the request body is seekable for payload signing.
func (ss *S3Store) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	buf := bytes.NewBuffer(make([]byte, 0, max(size, 0)))
	if _, err := io.Copy(buf, r); err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(ss.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	}

	if _, err := ss.Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (ss *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := ss.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ss.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, aws.ToString(out.ContentType), nil
}

func (ss *S3Store) Delete(ctx context.Context, key string) error {
	_, err := ss.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(ss.Bucket),
		Key:    aws.String(key),
	})
	return err
}
