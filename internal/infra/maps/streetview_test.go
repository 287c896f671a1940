package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
)

func TestFetchReturnsImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/metadata") {
			w.Write([]byte(`{"status":"OK"}`))
			return
		}
		assert.Equal(t, "600x300", r.URL.Query().Get("size"))
		assert.Equal(t, "90", r.URL.Query().Get("heading"))
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	sv := NewStreetViewWithBaseURL("test-key", srv.URL)
	img, err := sv.Fetch(context.Background(), domain.LatLng{Lat: 40.7, Lng: -74.0}, 90, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, 90, img.Heading)
	assert.Equal(t, 10, img.Pitch)

	// stored link never carries the key; the requests themselves do
	assert.NotContains(t, img.URL, "test-key")
	assert.Contains(t, img.URL, "heading=90")
}

func TestFetchMissingImageryIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS"}`))
	}))
	defer srv.Close()

	sv := NewStreetViewWithBaseURL("test-key", srv.URL)
	_, err := sv.Fetch(context.Background(), domain.LatLng{}, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZERO_RESULTS")
}
