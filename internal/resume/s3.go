package resume

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/amishk599/screener/internal/config"
	"github.com/amishk599/screener/internal/model"
)

const s3Scheme = "s3://"

// objectAPI is the subset of the S3 client used here.
type objectAPI interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source lists resumes stored under an s3://bucket/prefix location.
// Content is downloaded lazily when a file is opened.
type S3Source struct {
	client objectAPI
	logger *slog.Logger
}

// NewS3Source builds an S3 client from cfg. A custom endpoint (R2, MinIO)
// switches to path-style addressing.
func NewS3Source(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*S3Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts = append(opts, awsconfig.WithRegion(region))
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Source(client, logger), nil
}

func newS3Source(client objectAPI, logger *slog.Logger) *S3Source {
	return &S3Source{client: client, logger: logger}
}

// List returns every object under the prefix, in key order. Keys ending in
// "/" are folder markers and skipped.
func (s *S3Source) List(ctx context.Context, location string) ([]model.UploadedFile, error) {
	bucket, prefix, err := parseS3Location(location)
	if err != nil {
		return nil, err
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	var files []model.UploadedFile
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", location, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			files = append(files, s.objectFile(bucket, key, aws.ToInt64(obj.Size)))
		}
	}

	s.logger.Debug("listed s3 resumes", "bucket", bucket, "prefix", prefix, "count", len(files))
	return files, nil
}

func (s *S3Source) objectFile(bucket, key string, size int64) model.UploadedFile {
	client := s.client
	f := model.NewUploadedFile(uuid.NewString(), path.Base(key), size,
		func(ctx context.Context) (io.ReadCloser, error) {
			out, err := client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to get object %s: %w", key, err)
			}
			return out.Body, nil
		})
	f.Location = s3Scheme + bucket + "/" + key
	return f
}

// parseS3Location splits s3://bucket/prefix.
func parseS3Location(location string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(location, s3Scheme)
	if !ok || rest == "" {
		return "", "", fmt.Errorf("not an s3 location: %q", location)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in %q", location)
	}
	return bucket, prefix, nil
}
