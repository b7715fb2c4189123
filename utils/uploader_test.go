package utils

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformation(t *testing.T) {
	assert.Equal(t, "c_fit,h_600,q_70,w_470", transformation(PostTransform))
	assert.Equal(t, "c_fit,h_150,q_70,w_150", transformation(ProfileTransform))
	assert.Equal(t, "", transformation(UploadOptions{}))
	assert.Equal(t, "h_100,w_200", transformation(UploadOptions{Width: 200, Height: 100}))
}

func TestSign(t *testing.T) {
	c := NewCloudinary("demo", "key", "secret", "")

	params := map[string]string{
		"timestamp":      "1700000000",
		"transformation": "c_fit,h_600,q_70,w_470",
	}
	sum := sha1.Sum([]byte("timestamp=1700000000&transformation=c_fit,h_600,q_70,w_470secret"))
	assert.Equal(t, hex.EncodeToString(sum[:]), c.sign(params))

	// key order in the map must not change the signature
	assert.Equal(t, c.sign(params), c.sign(map[string]string{
		"transformation": "c_fit,h_600,q_70,w_470",
		"timestamp":      "1700000000",
	}))
}

// rewriteTransport redirects every request to the test server.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestCloudinary(t *testing.T, handler http.HandlerFunc) *Cloudinary {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	c := NewCloudinary("demo", "key", "secret", "avatars")
	c.client = &http.Client{
		Transport: rewriteTransport{target: target},
		Timeout:   5 * time.Second,
	}
	return c
}

func TestCloudinaryUpload(t *testing.T) {
	var got url.Values
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"secure_url": "https://res.cloudinary.com/demo/image/upload/abc.jpg"}`))
	})

	hosted, err := c.Upload(context.Background(), "data:image/png;base64,xyz", PostTransform)
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/abc.jpg", hosted)

	assert.Equal(t, "data:image/png;base64,xyz", got.Get("file"))
	assert.Equal(t, "key", got.Get("api_key"))
	assert.Equal(t, "avatars", got.Get("folder"))
	assert.Equal(t, "c_fit,h_600,q_70,w_470", got.Get("transformation"))
	assert.NotEmpty(t, got.Get("timestamp"))

	// the server-side signature over the signed params must match
	signed := map[string]string{
		"timestamp":      got.Get("timestamp"),
		"transformation": got.Get("transformation"),
		"folder":         got.Get("folder"),
	}
	assert.Equal(t, c.sign(signed), got.Get("signature"))
}

func TestCloudinaryUploadError(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Invalid image file"}}`))
	})

	_, err := c.Upload(context.Background(), "broken", PostTransform)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid image file")
}
