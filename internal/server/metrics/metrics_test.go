package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Uploaded("photo", 100)
	m.Uploaded("photo", 50)
	m.Uploaded("document", 10)
	m.UploadFailed("checksum")
	m.Deleted("deleted")
	m.Deleted("not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Uploads.WithLabelValues("photo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Uploads.WithLabelValues("document")))
	assert.Equal(t, 160.0, testutil.ToFloat64(m.UploadedBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadFailures.WithLabelValues("checksum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deletes.WithLabelValues("not_found")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Uploaded("photo", 1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `classroom_media_upload_total{media_type="photo"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
