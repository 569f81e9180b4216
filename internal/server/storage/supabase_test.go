package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Tredoux555/whale-class-sub004/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSupabase struct {
	bucket      string
	path        string
	contentType string
	body        []byte
	removed     []string
	err         error
}

func (f *fakeSupabase) upload(bucket, path string, data io.Reader, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.bucket, f.path, f.contentType = bucket, path, contentType
	f.body, _ = io.ReadAll(data)
	return nil
}

func (f *fakeSupabase) remove(bucket string, paths []string) error {
	if f.err != nil {
		return f.err
	}
	f.bucket = bucket
	f.removed = append(f.removed, paths...)
	return nil
}

func newSupabaseForTest(t *testing.T, fake *fakeSupabase) *SupabaseStore {
	t.Helper()
	st, err := NewSupabaseStore(&config.Config{
		SupabaseURL:    "https://proj.supabase.co/",
		SupabaseKey:    "srk",
		SupabaseBucket: "media",
	})
	require.NoError(t, err)
	st.client = fake
	return st
}

func TestSupabaseStore_PutAndDelete(t *testing.T) {
	fake := &fakeSupabase{}
	st := newSupabaseForTest(t, fake)

	url, err := st.Put(context.Background(), "media/s1/m1/report.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/media/media/s1/m1/report.pdf", url)
	assert.Equal(t, "media", fake.bucket)
	assert.Equal(t, "media/s1/m1/report.pdf", fake.path)
	assert.Equal(t, "application/pdf", fake.contentType)
	assert.Equal(t, []byte("%PDF"), fake.body)

	require.NoError(t, st.Delete(context.Background(), "media/s1/m1/report.pdf"))
	assert.Equal(t, []string{"media/s1/m1/report.pdf"}, fake.removed)
}

func TestSupabaseStore_Errors(t *testing.T) {
	st := newSupabaseForTest(t, &fakeSupabase{err: errors.New("bucket not found")})

	_, err := st.Put(context.Background(), "k", "image/jpeg", nil)
	assert.ErrorContains(t, err, "supabase upload error: bucket not found")

	err = st.Delete(context.Background(), "k")
	assert.ErrorContains(t, err, "supabase remove error")
}

func TestSupabaseStore_CancelledContext(t *testing.T) {
	fake := &fakeSupabase{}
	st := newSupabaseForTest(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.Put(ctx, "k", "image/jpeg", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.path)
}

func TestNewSupabaseStore_RequiresCredentials(t *testing.T) {
	_, err := NewSupabaseStore(&config.Config{SupabaseURL: "https://proj.supabase.co"})
	assert.Error(t, err)
}
