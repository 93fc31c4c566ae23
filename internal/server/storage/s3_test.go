package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	putIn   *s3.PutObjectInput
	body    string
	putErr  error
	getIn   *s3.GetObjectInput
	expires time.Duration
	signErr error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putIn = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.body = string(b)
	}
	return &s3.PutObjectOutput{}, f.putErr
}

func (f *fakeS3) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.getIn = in
	var o s3.PresignOptions
	for _, fn := range optFns {
		fn(&o)
	}
	f.expires = o.Expires
	if f.signErr != nil {
		return nil, f.signErr
	}
	return &v4.PresignedHTTPRequest{URL: "https://minio.local/" + *in.Key + "?sig=x"}, nil
}

func TestPut(t *testing.T) {
	f := &fakeS3{}
	s := &S3Storage{client: f, presign: f, bucket: "b", ttl: time.Minute}

	err := s.Put(context.Background(), "uploads/k.png", "image/png", strings.NewReader("data"), 4)
	require.NoError(t, err)
	assert.Equal(t, "b", *f.putIn.Bucket)
	assert.Equal(t, "uploads/k.png", *f.putIn.Key)
	assert.Equal(t, "image/png", *f.putIn.ContentType)
	assert.Equal(t, "data", f.body)

	f.putErr = errors.New("denied")
	err = s.Put(context.Background(), "uploads/k.png", "image/png", strings.NewReader("data"), 4)
	assert.ErrorContains(t, err, "denied")
}

func TestPresignGet(t *testing.T) {
	f := &fakeS3{}
	s := &S3Storage{client: f, presign: f, bucket: "b", ttl: 15 * time.Minute}

	url, err := s.PresignGet(context.Background(), "uploads/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://minio.local/uploads/a.jpg?sig=x", url)
	assert.Equal(t, 15*time.Minute, f.expires)

	f.signErr = errors.New("no creds")
	_, err = s.PresignGet(context.Background(), "uploads/a.jpg")
	assert.Error(t, err)
}

func TestNewS3Storage(t *testing.T) {
	orig := loadDefaultAWSConfig
	defer func() { loadDefaultAWSConfig = orig }()

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("bad env")
	}
	_, err := NewS3Storage(context.Background(), Config{Region: "us-east-1"})
	assert.ErrorContains(t, err, "bad env")

	loadDefaultAWSConfig = orig
	s, err := NewS3Storage(context.Background(), Config{
		Region: "us-east-1", AccessKey: "a", SecretKey: "s", Bucket: "b",
		BaseEndpoint: "http://127.0.0.1:9000/",
	})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, s.ttl)

	url, err := s.PresignGet(context.Background(), "uploads/x.png")
	require.NoError(t, err)
	assert.Contains(t, url, "127.0.0.1:9000")
	assert.Contains(t, url, "uploads/x.png")
}

func TestNewKey(t *testing.T) {
	k := NewKey(time.Date(2024, 3, 7, 23, 0, 0, 0, time.UTC), ".PNG")
	assert.Regexp(t, regexp.MustCompile(`^uploads/2024/03/07/[0-9a-f-]{36}\.png$`), k)
	assert.True(t, ValidKey(k))
}

func TestValidKey(t *testing.T) {
	assert.False(t, ValidKey("users/1/x"))
	assert.False(t, ValidKey("uploads/../secret"))
	assert.False(t, ValidKey("uploads//a"))
}
