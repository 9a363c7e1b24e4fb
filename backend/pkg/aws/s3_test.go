package aws

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	location string
	err      error
	objects  map[string][]byte
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[*in.Key] = body
	return &manager.UploadOutput{Location: f.location}, nil
}

type fakeBuckets struct {
	err   error
	input *s3.CreateBucketInput
}

func (f *fakeBuckets) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.input = in
	return &s3.CreateBucketOutput{}, f.err
}

func TestS3Publisher_UploadOverwritesByName(t *testing.T) {
	up := &fakeUploader{}
	p := NewS3PublisherWith(up, &fakeBuckets{}, "invoices", "us-east-1", "http://localhost:4566/")

	url, err := p.Upload(context.Background(), "invoice_order_7.pdf", []byte("v1"), "application/pdf")
	require.NoError(t, err)
	_, err = p.Upload(context.Background(), "invoice_order_7.pdf", []byte("v2"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4566/invoices/invoice_order_7.pdf", url)
	assert.Equal(t, []byte("v2"), up.objects["invoice_order_7.pdf"])
}

func TestS3Publisher_URLFallbacks(t *testing.T) {
	p := NewS3PublisherWith(&fakeUploader{location: "https://invoices.s3.eu-west-2.amazonaws.com/a.pdf"}, &fakeBuckets{}, "invoices", "eu-west-2", "")
	url, err := p.Upload(context.Background(), "a.pdf", nil, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://invoices.s3.eu-west-2.amazonaws.com/a.pdf", url)

	p = NewS3PublisherWith(&fakeUploader{}, &fakeBuckets{}, "invoices", "us-east-1", "")
	url, err = p.Upload(context.Background(), "b.pdf", nil, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://invoices.s3.amazonaws.com/b.pdf", url)
}

func TestS3Publisher_UploadError(t *testing.T) {
	p := NewS3PublisherWith(&fakeUploader{err: errors.New("AccessDenied")}, &fakeBuckets{}, "invoices", "", "")
	_, err := p.Upload(context.Background(), "a.pdf", nil, "application/pdf")
	assert.ErrorContains(t, err, "AccessDenied")
}

func TestS3Publisher_EnsureBucket(t *testing.T) {
	buckets := &fakeBuckets{err: &types.BucketAlreadyOwnedByYou{}}
	p := NewS3PublisherWith(&fakeUploader{}, buckets, "invoices", "eu-west-2", "")
	require.NoError(t, p.EnsureBucket(context.Background()))
	assert.Equal(t, types.BucketLocationConstraint("eu-west-2"), buckets.input.CreateBucketConfiguration.LocationConstraint)

	buckets = &fakeBuckets{}
	p = NewS3PublisherWith(&fakeUploader{}, buckets, "invoices", "us-east-1", "")
	require.NoError(t, p.EnsureBucket(context.Background()))
	assert.Nil(t, buckets.input.CreateBucketConfiguration)

	p = NewS3PublisherWith(&fakeUploader{}, &fakeBuckets{err: errors.New("denied")}, "invoices", "", "")
	assert.Error(t, p.EnsureBucket(context.Background()))
}
