// Package objectstore reads result files from an S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

const defaultRegion = "us-east-1"

var (
	// ErrNotConfigured means the bucket or credentials were never provided.
	ErrNotConfigured = errors.New("object store not configured")
	// ErrNotFound means the key does not exist in the bucket.
	ErrNotFound = errors.New("object not found")
	// ErrAuth means the store rejected or never received credentials.
	ErrAuth = errors.New("object store credentials invalid or missing")
)

// authCodes are S3 error codes caused by bad or insufficient credentials.
var authCodes = map[string]bool{
	"AccessDenied":          true,
	"Forbidden":             true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"InvalidToken":          true,
	"TokenRefreshRequired":  true,
	"AllAccessDisabled":     true,
}

// Getter retrieves the text content of an object by key.
type Getter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Config holds configuration for the S3 store.
type Config struct {
	Bucket      string
	AccessKey   string
	SecretKey   string
	EndpointURL string // Optional; path-style addressing is always used
	Region      string
	// MaxAttempts overrides the SDK retry budget when positive.
	MaxAttempts int
}

// Store reads objects from a single bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// New creates a new S3 store.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket name is empty", ErrNotConfigured)
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg := aws.Config{
		Region:      region,
		Credentials: aws.NewCredentialsCache(staticCredentials(cfg.AccessKey, cfg.SecretKey)),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
		if cfg.MaxAttempts > 0 {
			o.RetryMaxAttempts = cfg.MaxAttempts
		}
	})

	return &Store{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string {
	return s.bucket
}

// Get downloads the full content of key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyError(err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body: %w", err)
	}

	slog.Debug("fetched object", "bucket", s.bucket, "key", key, "bytes", len(body))
	return body, nil
}

// Ping checks that the bucket is reachable with the configured credentials.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

func staticCredentials(accessKey, secretKey string) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		if accessKey == "" || secretKey == "" {
			return aws.Credentials{}, fmt.Errorf("%w: access key or secret key is empty", ErrAuth)
		}
		return aws.Credentials{
			AccessKeyID:     accessKey,
			SecretAccessKey: secretKey,
			Source:          "benchview",
		}, nil
	})
}

// classifyError maps SDK errors onto ErrNotFound and ErrAuth.
// Other errors are returned wrapped as they are.
func classifyError(err error) error {
	if errors.Is(err, ErrAuth) {
		return err
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %s", ErrNotFound, noSuchKey.ErrorMessage())
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case code == "NoSuchKey" || code == "NotFound":
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.ErrorMessage())
		case authCodes[code]:
			return fmt.Errorf("%w: %s", ErrAuth, apiErr.ErrorMessage())
		}
		return &APIError{Code: code, Message: apiErr.ErrorMessage(), Err: err}
	}

	return fmt.Errorf("s3 request: %w", err)
}

// APIError is an S3 error response that is neither not-found nor auth.
type APIError struct {
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}
