package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Uploader is the slice of manager.Uploader used by S3Publisher.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// BucketCreator is the slice of the S3 client used by EnsureBucket.
type BucketCreator interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// NewS3Client creates an S3 client. With AWS_ENDPOINT set (LocalStack) it
// switches to path-style addressing.
func NewS3Client(cfg sdkaws.Config) *s3.Client {
	pathStyle := os.Getenv("AWS_ENDPOINT") != "" || os.Getenv("AWS_S3_FORCE_PATH_STYLE") == "true"
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
	})
}

// S3Publisher stores generated documents in one bucket and returns their URL.
type S3Publisher struct {
	uploader      Uploader
	buckets       BucketCreator
	bucket        string
	region        string
	publicBaseURL string
}

// NewS3Publisher wires a manager.Uploader over client. publicBaseURL, when
// set, is used to build object URLs (e.g. http://localhost:4566).
func NewS3Publisher(client *s3.Client, bucket, region, publicBaseURL string) *S3Publisher {
	return NewS3PublisherWith(manager.NewUploader(client), client, bucket, region, publicBaseURL)
}

func NewS3PublisherWith(uploader Uploader, buckets BucketCreator, bucket, region, publicBaseURL string) *S3Publisher {
	return &S3Publisher{
		uploader:      uploader,
		buckets:       buckets,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// EnsureBucket creates the bucket, treating an existing bucket as success.
func (p *S3Publisher) EnsureBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{Bucket: sdkaws.String(p.bucket)}
	if p.region != "" && p.region != DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(p.region),
		}
	}
	_, err := p.buckets.CreateBucket(ctx, input)
	if err == nil {
		return nil
	}
	var owned *types.BucketAlreadyOwnedByYou
	var exists *types.BucketAlreadyExists
	if errors.As(err, &owned) || errors.As(err, &exists) {
		return nil
	}
	return fmt.Errorf("create bucket %s: %w", p.bucket, err)
}

// Upload writes body under name, replacing any previous object, and returns
// the object's URL.
func (p *S3Publisher) Upload(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	out, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(p.bucket),
		Key:         sdkaws.String(name),
		Body:        bytes.NewReader(body),
		ContentType: sdkaws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", name, p.bucket, err)
	}
	return p.objectURL(name, out), nil
}

func (p *S3Publisher) objectURL(key string, out *manager.UploadOutput) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if p.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", p.publicBaseURL, p.bucket, escaped)
	}
	if out != nil && out.Location != "" {
		return out.Location
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, escaped)
}
