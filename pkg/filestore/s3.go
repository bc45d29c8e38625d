package filestore

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-hclog"
)

// S3Config contains configuration for the S3 backend.
type S3Config struct {
	Endpoint  string // S3 endpoint URL; empty for AWS
	Region    string
	Bucket    string
	Prefix    string // Optional key prefix (e.g., "files")
	AccessKey string
	SecretKey string

	// PublicBaseURL is prepended to object keys to build the URL files are
	// served from, e.g. a CDN in front of the bucket.
	PublicBaseURL string

	RequestTimeoutSeconds int
	InsecureSkipVerify    bool
}

// Validate validates the S3 configuration.
func (c *S3Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	return nil
}

// SetDefaults sets default values for optional configuration fields.
func (c *S3Config) SetDefaults() {
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = 30
	}
	c.Prefix = strings.Trim(c.Prefix, "/")
	c.PublicBaseURL = strings.TrimSuffix(c.PublicBaseURL, "/")
}

// S3Backend stores files in an S3-compatible bucket.
type S3Backend struct {
	client *s3.Client
	cfg    *S3Config
	logger hclog.Logger
}

// NewS3Backend creates an S3 backend and verifies the bucket is reachable.
func NewS3Backend(ctx context.Context, cfg *S3Config, logger hclog.Logger) (*S3Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid S3 configuration: %w", err)
	}
	cfg.SetDefaults()

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	awsCfg, err := createAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Custom endpoint for MinIO or other S3-compatible services
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	b := &S3Backend{
		client: client,
		cfg:    cfg,
		logger: logger.Named("s3"),
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("bucket %s is not accessible: %w", cfg.Bucket, err)
	}

	b.logger.Info("S3 file store initialized", "bucket", cfg.Bucket, "prefix", cfg.Prefix)
	return b, nil
}

// createAWSConfig creates AWS SDK configuration from S3 config. The HTTP
// client is a BuildableClient so the SDK can still apply AWS_CA_BUNDLE.
func createAWSConfig(ctx context.Context, cfg *S3Config) (aws.Config, error) {
	httpClient := awshttp.NewBuildableClient().
		WithTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second).
		WithTransportOptions(func(tr *http.Transport) {
			if !cfg.InsecureSkipVerify {
				return
			}
			if tr.TLSClientConfig == nil {
				tr.TLSClientConfig = &tls.Config{}
			}
			tr.TLSClientConfig.InsecureSkipVerify = true
		})

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(httpClient),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	return config.LoadDefaultConfig(ctx, opts...)
}

func (b *S3Backend) objectKey(key string) string {
	if b.cfg.Prefix == "" {
		return key
	}
	return b.cfg.Prefix + "/" + key
}

// Put implements Backend.
func (b *S3Backend) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	objectKey := b.objectKey(key)

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.cfg.Bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object to S3: %w", err)
	}

	return b.publicURL(objectKey), nil
}

func (b *S3Backend) publicURL(objectKey string) string {
	switch {
	case b.cfg.PublicBaseURL != "":
		return b.cfg.PublicBaseURL + "/" + objectKey
	case b.cfg.Endpoint != "":
		return strings.TrimSuffix(b.cfg.Endpoint, "/") + "/" + b.cfg.Bucket + "/" + objectKey
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.cfg.Bucket, b.cfg.Region, objectKey)
}
