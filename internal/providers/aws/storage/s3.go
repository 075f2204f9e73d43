// Package storage persists report documents to S3.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const contentTypeJSON = "application/json"

type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes objects into one bucket.
type S3Store struct {
	client s3Client
	bucket string
}

// NewS3Store returns a store writing to bucket.
func NewS3Store(client s3Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// Put writes body under key as application/json, replacing any existing
// object.
func (s *S3Store) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentTypeJSON),
	})
	if err != nil {
		return fmt.Errorf("PutObject s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
