// Package s3store implements the object-store side of the backend boundary
// against any S3-compatible service (MinIO, AWS). It is used when the media
// bucket is hosted outside the primary backend.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/pogibrader/noted/internal/common"
)

// Seams for tests.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// Config holds the settings for an S3-compatible endpoint.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BaseEndpoint    string
	// PublicBaseURL is the prefix public object URLs are built from.
	// Empty falls back to BaseEndpoint.
	PublicBaseURL string
}

// Store implements backend.ObjectStore over the AWS SDK.
type Store struct {
	cfg    Config
	client *s3.Client
}

// New builds a Store with static credentials and an endpoint override,
// the usual setup for self-hosted S3-compatible services.
func New(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &Store{cfg: cfg, client: client}, nil
}

// Upload stores data under bucket/key. If-None-Match guards against
// overwriting an existing key; a precondition failure maps onto
// common.ErrKeyExists.
func (s *Store) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "PreconditionFailed" {
			return fmt.Errorf("%w: %s/%s", common.ErrKeyExists, bucket, key)
		}
		return fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL builds the public object URL from the configured base.
func (s *Store) PublicURL(bucket, key string) string {
	base := s.cfg.PublicBaseURL
	if base == "" {
		base = s.cfg.BaseEndpoint
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, key)
}
