package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Tredoux555/whale-class-sub004/internal/server/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []*s3.DeleteObjectInput
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func s3Config() *config.Config {
	return &config.Config{
		StorageBackend: config.BackendS3,
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
		S3Bucket:       "classroom",
	}
}

func stubS3(t *testing.T, fake *fakeS3) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		require.NotNil(t, opts.BaseEndpoint)
		assert.Equal(t, "http://127.0.0.1:9000/", *opts.BaseEndpoint)
		assert.True(t, opts.UsePathStyle)
		return fake
	}
}

func TestS3Store_PutAndDelete(t *testing.T) {
	fake := &fakeS3{}
	stubS3(t, fake)

	st, err := NewS3Store(context.Background(), s3Config())
	require.NoError(t, err)

	url, err := st.Put(context.Background(), "media/s1/m1/capture-m1.jpg", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/classroom/media/s1/m1/capture-m1.jpg", url)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "classroom", aws.ToString(fake.puts[0].Bucket))
	assert.Equal(t, "media/s1/m1/capture-m1.jpg", aws.ToString(fake.puts[0].Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.puts[0].ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(fake.puts[0].ContentLength))
	assert.Equal(t, []byte("jpeg"), fake.bodies[0])

	require.NoError(t, st.Delete(context.Background(), "media/s1/m1/capture-m1.jpg"))
	require.Len(t, fake.deletes, 1)
	assert.Equal(t, "media/s1/m1/capture-m1.jpg", aws.ToString(fake.deletes[0].Key))
}

func TestS3Store_Errors(t *testing.T) {
	fake := &fakeS3{err: errors.New("boom")}
	stubS3(t, fake)

	st, err := NewS3Store(context.Background(), s3Config())
	require.NoError(t, err)

	_, err = st.Put(context.Background(), "k", "image/jpeg", nil)
	assert.ErrorContains(t, err, "s3 put error: boom")

	err = st.Delete(context.Background(), "k")
	assert.ErrorContains(t, err, "s3 delete error: boom")
}

func TestNewS3Store_ConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Store(context.Background(), s3Config())
	assert.ErrorContains(t, err, "aws config error")
}

func TestNew_SelectsBackend(t *testing.T) {
	stubS3(t, &fakeS3{})

	st, err := New(context.Background(), s3Config())
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, st)

	st, err = New(context.Background(), &config.Config{
		StorageBackend: config.BackendSupabase,
		SupabaseURL:    "https://proj.supabase.co/",
		SupabaseKey:    "srk",
		SupabaseBucket: "media",
	})
	require.NoError(t, err)
	assert.IsType(t, &SupabaseStore{}, st)

	_, err = New(context.Background(), &config.Config{StorageBackend: "ftp"})
	assert.ErrorContains(t, err, `unknown storage backend "ftp"`)
}
