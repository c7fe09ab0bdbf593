package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrInvalidConfig indicates required storage settings are missing.
var ErrInvalidConfig = errors.New("storage: bucket and region are required")

// Config holds S3 settings with environment variable support.
type Config struct {
	Bucket         string `env:"S3_BUCKET"`
	Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`          // for S3-compatible services
	BaseURL        string `env:"S3_BASE_URL"`          // CDN or public URL base; auto-generated if empty
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"`  // required for MinIO
}

// S3Client is the subset of the S3 API used by Storage, extracted so tests
// can substitute a mock.
type S3Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3aws.DeleteObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error)
}

// Storage uploads listing photos to an S3 bucket.
type Storage struct {
	client  S3Client
	bucket  string
	baseURL string
}

// Option configures Storage construction.
type Option func(*options)

type options struct {
	client S3Client
}

// WithClient sets a pre-configured S3 client, primarily for tests.
func WithClient(client S3Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// New creates the S3 storage adapter.
func New(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client := o.client
	if client == nil {
		loadOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}

		client = s3aws.NewFromConfig(awsCfg, func(s3opts *s3aws.Options) {
			if cfg.Endpoint != "" {
				s3opts.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			s3opts.UsePathStyle = cfg.ForcePathStyle
		})
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &Storage{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

// Upload stores the object under key and returns its public URL.
func (s *Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.URL(key), nil
}

// Delete removes the object under key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3aws.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URL returns the public URL for a stored key.
func (s *Storage) URL(key string) string {
	return s.baseURL + "/" + path.Clean(strings.TrimPrefix(key, "/"))
}
