// Package s3 stores payloads in an Amazon S3 (or compatible) bucket.
//
// The storage ref of a payload is its object key.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/storage"
)

type s3Store struct {
	client *awss3.Client
	bucket string
	prefix string
}

var _ storage.Store = &s3Store{}

type Option func(*s3Store) *s3Store

// WithPrefix prepends a key prefix to every object, so one bucket can
// host several instances.
func WithPrefix(prefix string) Option {
	return func(s *s3Store) *s3Store {
		s.prefix = prefix
		return s
	}
}

// New returns a Store writing into bucket, with credentials and region
// taken from the default AWS configuration chain.
func New(ctx context.Context, bucket string, options ...Option) (storage.Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}

	s := &s3Store{
		client: awss3.NewFromConfig(cfg),
		bucket: bucket,
	}
	for _, opt := range options {
		s = opt(s)
	}
	return s, nil
}

func (s *s3Store) key(ref string) string {
	if s.prefix == "" {
		return ref
	}
	return s.prefix + "/" + ref
}

func (s *s3Store) Put(ctx context.Context, suggestedName string, r io.Reader) (domain.StorageRef, error) {
	// PutObject wants a seekable or fully-known body; payloads are
	// bounded (spec documents, data files, plots), so buffering is fine.
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}

	if _, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(suggestedName)),
		Body:   bytes.NewReader(body),
	}); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return domain.StorageRef(suggestedName), nil
}

func (s *s3Store) Get(ctx context.Context, ref domain.StorageRef) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(string(ref))),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return out.Body, nil
}

func (s *s3Store) Delete(ctx context.Context, ref domain.StorageRef) error {
	if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(string(ref))),
	}); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return nil
}
