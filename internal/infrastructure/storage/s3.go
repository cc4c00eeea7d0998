// Package storage implements the external object store holding scan images,
// backed by S3 or any S3-compatible service (MinIO in development).
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/oralvis/oralvis-api/internal/api/metrics"
	"github.com/oralvis/oralvis-api/internal/core/ports"
)

// Config captures the settings for the S3 bucket scan images are written to.
type Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the AWS endpoint for S3-compatible stores.
	Endpoint string
	// BaseURL overrides the public URL prefix recorded on scan records
	// (e.g. a CDN in front of the bucket). Defaults to the bucket's
	// virtual-hosted S3 URL.
	BaseURL string
}

// S3Store satisfies ports.ObjectStorage against an S3 bucket.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// New builds an S3Store from static credentials. The bucket is assumed to
// exist and allow public reads on the recorded URLs.
func New(ctx context.Context, cfg Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

// Upload writes one object and returns its durable public reference.
func (s *S3Store) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*ports.StoredObject, error) {
	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	metrics.StorageUploadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("storage: put object %s: %w", key, err)
	}

	return &ports.StoredObject{
		Key:         key,
		URL:         s.baseURL + "/" + key,
		Bytes:       size,
		ContentType: contentType,
	}, nil
}
