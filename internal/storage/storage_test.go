package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eco-stations/internal/config"
)

func TestReviewImageName(t *testing.T) {
	at := time.Unix(1700000000, 0)
	assert.Equal(t, "3_12_1700000000.jpg", ReviewImageName(3, 12, at, "photo.JPG"))
	assert.Equal(t, "3_12_1700000000.png", ReviewImageName(3, 12, at, "../../etc/x.png"))
	assert.Equal(t, "3_12_1700000000", ReviewImageName(3, 12, at, "noext"))
	assert.Equal(t, "3_12_1700000000", ReviewImageName(3, 12, at, "evil.p/hp"))
	assert.Equal(t, "3_12_1700000000", ReviewImageName(3, 12, at, "x.verylongext"))
}

func TestLocalStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	st, err := NewLocalStore(dir)
	require.NoError(t, err)

	url, err := st.Save(context.Background(), "1_2_3.jpg", strings.NewReader("img"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1_2_3.jpg", url)

	b, err := os.ReadFile(filepath.Join(dir, "1_2_3.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(b))

	_, err = st.Save(context.Background(), "1_2_3.jpg", strings.NewReader("other"), "")
	assert.ErrorIs(t, err, ErrExists, "existing files are not overwritten")
}

func TestLocalStoreDelete(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStore(dir)
	require.NoError(t, err)

	_, err = st.Save(context.Background(), "1_2_3.jpg", strings.NewReader("img"), "")
	require.NoError(t, err)
	require.NoError(t, st.Delete(context.Background(), "1_2_3.jpg"))
	_, err = os.Stat(filepath.Join(dir, "1_2_3.jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, st.Delete(context.Background(), "1_2_3.jpg"), "missing files are ignored")
	assert.Error(t, st.Delete(context.Background(), "../x.jpg"))
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "1_2_3.png", withSuffix("1_2_3.png", 0))
	assert.Equal(t, "1_2_3_1.png", withSuffix("1_2_3.png", 1))
	assert.Equal(t, "1_2_3_12", withSuffix("1_2_3", 12))
}

func TestSaveUnique(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	name, url, err := SaveUnique(ctx, st, "1_2_3.png", strings.NewReader("first"), "")
	require.NoError(t, err)
	assert.Equal(t, "1_2_3.png", name)
	assert.Equal(t, "/uploads/1_2_3.png", url)

	name, url, err = SaveUnique(ctx, st, "1_2_3.png", strings.NewReader("second"), "")
	require.NoError(t, err)
	assert.Equal(t, "1_2_3_1.png", name)
	assert.Equal(t, "/uploads/1_2_3_1.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "1_2_3_1.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))
	b, err = os.ReadFile(filepath.Join(dir, "1_2_3.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(b))
}

func TestSaveUniqueGivesUp(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStore(dir)
	require.NoError(t, err)
	for i := 0; i < maxNameAttempts; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, withSuffix("9_9_9.jpg", i)), nil, 0o644))
	}
	_, _, err = SaveUnique(context.Background(), st, "9_9_9.jpg", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrExists)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	st, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "..", "../x.jpg", `a\b.jpg`} {
		_, err := st.Save(context.Background(), name, strings.NewReader("x"), "")
		assert.Error(t, err, name)
	}
}

type fakePutter struct {
	in      *s3.PutObjectInput
	err     error
	deleted *s3.DeleteObjectInput
	delErr  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakePutter) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = in
	return &s3.DeleteObjectOutput{}, f.delErr
}

func TestS3StoreSave(t *testing.T) {
	fp := &fakePutter{}
	st := &S3Store{client: fp, bucket: "reviews-bucket", publicURL: "http://minio:9000/reviews-bucket"}

	url, err := st.Save(context.Background(), "1_2_3.png", bytes.NewReader([]byte("png")), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/reviews-bucket/reviews/1_2_3.png", url)
	assert.Equal(t, "reviews-bucket", aws.ToString(fp.in.Bucket))
	assert.Equal(t, "reviews/1_2_3.png", aws.ToString(fp.in.Key))
	assert.Equal(t, "image/png", aws.ToString(fp.in.ContentType))
	assert.Equal(t, "*", aws.ToString(fp.in.IfNoneMatch))
	body, _ := io.ReadAll(fp.in.Body)
	assert.Equal(t, "png", string(body))

	fp.err = errors.New("access denied")
	_, err = st.Save(context.Background(), "1_2_4.png", bytes.NewReader(nil), "")
	assert.ErrorContains(t, err, "access denied")
	assert.NotErrorIs(t, err, ErrExists)

	fp.err = &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
	_, err = st.Save(context.Background(), "1_2_3.png", bytes.NewReader(nil), "")
	assert.ErrorIs(t, err, ErrExists)
}

func TestS3StoreDelete(t *testing.T) {
	fp := &fakePutter{}
	st := &S3Store{client: fp, bucket: "reviews-bucket", publicURL: "http://minio:9000/reviews-bucket"}

	require.NoError(t, st.Delete(context.Background(), "1_2_3.png"))
	assert.Equal(t, "reviews-bucket", aws.ToString(fp.deleted.Bucket))
	assert.Equal(t, "reviews/1_2_3.png", aws.ToString(fp.deleted.Key))

	fp.delErr = errors.New("timeout")
	assert.ErrorContains(t, st.Delete(context.Background(), "1_2_3.png"), "timeout")
}

func TestNewS3StoreAppliesConfig(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(_ context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(_ aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	st, err := NewS3Store(context.Background(), config.StorageConfig{
		Backend:     "s3",
		S3Bucket:    "eco",
		S3Region:    "eu-central-1",
		S3Endpoint:  "http://127.0.0.1:9000/",
		S3AccessKey: "minioadmin",
		S3SecretKey: "minioadmin",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://127.0.0.1:9000/eco", st.publicURL)
	assert.Equal(t, "s3", st.Backend())
}

func TestNewS3StoreLoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}
	_, err := NewS3Store(context.Background(), config.StorageConfig{S3Bucket: "eco"})
	assert.ErrorContains(t, err, "no region")
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBase(config.StorageConfig{S3PublicURL: "https://cdn.example.com/"}))
	assert.Equal(t, "https://eco.s3.us-east-1.amazonaws.com", publicBase(config.StorageConfig{S3Bucket: "eco", S3Region: "us-east-1"}))
}

func TestNewSelectsBackend(t *testing.T) {
	st, err := New(context.Background(), config.StorageConfig{Backend: "local", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", st.Backend())

	_, err = New(context.Background(), config.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)
}
