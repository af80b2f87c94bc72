package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dormdesk/backend/internal/domain/shared"
	infraconfig "github.com/dormdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// S3SlipStore stores slips in any S3-compatible backend (AWS S3, MinIO, RustFS)
type S3SlipStore struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	presignExpiration time.Duration
	urls              objectURLs
	logger            *zap.Logger
}

// S3Option configures an S3SlipStore
type S3Option func(*S3SlipStore)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3SlipStore) {
		s.logger = logger
	}
}

// WithPresignExpiration overrides the presigned URL lifetime
func WithPresignExpiration(d time.Duration) S3Option {
	return func(s *S3SlipStore) {
		s.presignExpiration = d
	}
}

// NewS3SlipStore creates a slip store from configuration
func NewS3SlipStore(cfg *infraconfig.StorageConfig, opts ...S3Option) (*S3SlipStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(endpoint, "/") + "/" + cfg.Bucket
	}

	s := &S3SlipStore{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		presignExpiration: cfg.PresignExpiration,
		urls:              newObjectURLs(base),
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.presignExpiration <= 0 {
		s.presignExpiration = 15 * time.Minute
	}
	return s, nil
}

// EnsureBucket creates the bucket if it does not exist. Called at startup.
func (s *S3SlipStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return shared.NewTransientError("check storage bucket", err)
	}

	s.logger.Info("Creating slip bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return shared.NewTransientError("create storage bucket", err)
	}
	return nil
}

// UploadURL presigns a PUT for key
func (s *S3SlipStore) UploadURL(ctx context.Context, key, contentType string) (*PresignedURL, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return nil, shared.NewTransientError("presign slip upload", err)
	}
	return &PresignedURL{URL: req.URL, Method: http.MethodPut, ExpiresAt: time.Now().Add(s.presignExpiration)}, nil
}

// DownloadURL presigns a GET for key
func (s *S3SlipStore) DownloadURL(ctx context.Context, key string) (*PresignedURL, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return nil, shared.NewTransientError("presign slip download", err)
	}
	return &PresignedURL{URL: req.URL, Method: http.MethodGet, ExpiresAt: time.Now().Add(s.presignExpiration)}, nil
}

// Exists reports whether the object was uploaded
func (s *S3SlipStore) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) ||
		strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") {
		return false, nil
	}
	return false, shared.NewTransientError("check slip object", err)
}

// Delete removes an object
func (s *S3SlipStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return shared.NewTransientError("delete slip object", err)
	}
	return nil
}

// ObjectURL returns the stable URL stored on bills and payments
func (s *S3SlipStore) ObjectURL(key string) string {
	return s.urls.url(key)
}

// KeyOf extracts the object key from a URL produced by ObjectURL
func (s *S3SlipStore) KeyOf(objectURL string) (string, bool) {
	return s.urls.key(objectURL)
}

// Bucket returns the bucket name
func (s *S3SlipStore) Bucket() string {
	return s.bucket
}
