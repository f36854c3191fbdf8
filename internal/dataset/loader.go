package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facilitydex/internal/config"
	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/logger"
)

const s3Scheme = "s3://"

// ObjectGetter is the part of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client. Static credentials are used when both keys
// are set, otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// Loader opens datasets by location: a local path or s3://bucket/key.
type Loader struct {
	s3 ObjectGetter
}

// NewLoader creates a loader. objects may be nil when S3 is not configured.
func NewLoader(objects ObjectGetter) *Loader {
	return &Loader{s3: objects}
}

// Load reads and decodes the dataset at location. Compression is inferred
// from the name suffix (.gz, .zst).
func (l *Loader) Load(ctx context.Context, location string) (*domain.Dataset, error) {
	log := logger.FromContext(ctx)
	if strings.HasPrefix(location, s3Scheme) {
		bucket, key, err := parseS3Location(location)
		if err != nil {
			return nil, err
		}
		return l.loadS3(ctx, log, bucket, key)
	}
	return loadFile(log, location)
}

func loadFile(log *zap.Logger, path string) (*domain.Dataset, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	ds, err := Decode(f, EncodingFromName(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	log.Info("dataset loaded", zap.String("path", path), zap.Int("rows", ds.Size()))
	return ds, nil
}

func (l *Loader) loadS3(ctx context.Context, log *zap.Logger, bucket, key string) (*domain.Dataset, error) {
	if l.s3 == nil {
		return nil, fmt.Errorf("s3 dataset source is not configured")
	}
	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	enc := EncodingFromName(key)
	if enc == Identity && out.ContentEncoding != nil {
		if enc, err = ParseEncoding(*out.ContentEncoding); err != nil {
			return nil, err
		}
	}
	ds, err := Decode(out.Body, enc)
	if err != nil {
		return nil, fmt.Errorf("decode s3://%s/%s: %w", bucket, key, err)
	}
	log.Info("dataset loaded",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("rows", ds.Size()),
	)
	return ds, nil
}

func parseS3Location(location string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q, want s3://bucket/key", location)
	}
	return bucket, key, nil
}
