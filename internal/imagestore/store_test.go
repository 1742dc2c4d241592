package imagestore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImageServer(t *testing.T, contentType string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		_, _ = w.Write([]byte("imagebytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetOrFetch_Downloads(t *testing.T) {
	var hits atomic.Int32
	srv := newImageServer(t, "image/png", &hits)
	dir := t.TempDir()

	s, err := New(dir, "/static/images/", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	ref, err := s.GetOrFetch(context.Background(), srv.URL+"/pic", Key("janedoe", KindProfile))
	require.NoError(t, err)
	assert.Equal(t, "/static/images/janedoe_profile.png", ref)

	data, err := os.ReadFile(filepath.Join(dir, "janedoe_profile.png"))
	require.NoError(t, err)
	assert.Equal(t, "imagebytes", string(data))
}

func TestGetOrFetch_Idempotent(t *testing.T) {
	var hits atomic.Int32
	srv := newImageServer(t, "image/jpeg", &hits)
	s, err := New(t.TempDir(), "/img", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	refs := make([]string, 8)
	for i := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref, err := s.GetOrFetch(context.Background(), srv.URL+"/pic", "janedoe_banner")
			assert.NoError(t, err)
			refs[i] = ref
		}()
	}
	wg.Wait()

	for _, ref := range refs {
		assert.Equal(t, "/img/janedoe_banner.jpg", ref)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetOrFetch_UnknownTypeDefaultsToJPG(t *testing.T) {
	var hits atomic.Int32
	srv := newImageServer(t, "", &hits)
	s, err := New(t.TempDir(), "/img", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	ref, err := s.GetOrFetch(context.Background(), srv.URL+"/pic", "x_profile")
	require.NoError(t, err)
	assert.Equal(t, "/img/x_profile.jpg", ref)
}

func TestGetOrFetch_HTTPError(t *testing.T) {
	var hits atomic.Int32
	srv := newImageServer(t, "image/png", &hits)
	dir := t.TempDir()
	s, err := New(dir, "/img", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = s.GetOrFetch(context.Background(), srv.URL+"/missing", "x_profile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")

	matches, _ := filepath.Glob(filepath.Join(dir, "x_profile*"))
	assert.Empty(t, matches)
}

func TestGetOrFetch_InvalidKey(t *testing.T) {
	s, err := New(t.TempDir(), "/img")
	require.NoError(t, err)

	_, err = s.GetOrFetch(context.Background(), "http://example.com", "../escape")
	assert.Error(t, err)
}

func TestDeleteByUsername(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "/img")
	require.NoError(t, err)

	for _, name := range []string{"janedoe_profile.jpg", "janedoe_banner.png", "johndoe_profile.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	require.NoError(t, s.DeleteByUsername("janedoe"))

	_, err = os.Stat(filepath.Join(dir, "janedoe_profile.jpg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "janedoe_banner.png"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "johndoe_profile.jpg"))
	assert.NoError(t, err)

	assert.NoError(t, s.DeleteByUsername(""))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".jpg", extension("image/jpeg"))
	assert.Equal(t, ".png", extension("image/png; charset=binary"))
	assert.Equal(t, ".webp", extension("image/webp"))
	assert.Equal(t, ".jpg", extension(""))
	assert.Equal(t, ".jpg", extension("application/x-unknown-thing"))
}
