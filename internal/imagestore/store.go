// Package imagestore keeps localised copies of contact images on disk.
package imagestore

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Image kinds stored per contact.
const (
	KindProfile = "profile"
	KindBanner  = "banner"
)

const (
	defaultExt     = ".jpg"
	lockDir        = ".locks"
	lockRetryDelay = 50 * time.Millisecond
)

// Common image types map to their usual extension; anything else falls
// back to the system mime table.
var preferredExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// Key builds the storage key for a contact image.
func Key(username, kind string) string {
	return username + "_" + kind
}

// Store saves images under dir and addresses them as urlPrefix/filename.
// Fetches of the same key are serialised with a file lock so concurrent
// processes download each image once.
type Store struct {
	dir       string
	urlPrefix string
	http      *http.Client
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) {
		s.http = c
	}
}

// New creates a Store rooted at dir, creating it if needed.
func New(dir, urlPrefix string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, lockDir), 0o755); err != nil {
		return nil, eris.Wrap(err, "imagestore: create dir")
	}
	s := &Store{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// GetOrFetch returns the local reference for key, downloading url when no
// file is stored for it yet.
func (s *Store) GetOrFetch(ctx context.Context, url, key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", eris.Errorf("imagestore: invalid key %q", key)
	}
	if name, ok := s.existing(key); ok {
		return s.ref(name), nil
	}

	lock := flock.New(filepath.Join(s.dir, lockDir, key+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", eris.Wrapf(err, "imagestore: lock %s", key)
	}
	if !locked {
		return "", eris.Errorf("imagestore: lock %s not acquired", key)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			zap.L().Warn("imagestore: unlock failed", zap.String("key", key), zap.Error(err))
		}
	}()

	// Another process may have finished the download while we waited.
	if name, ok := s.existing(key); ok {
		return s.ref(name), nil
	}

	name, err := s.download(ctx, url, key)
	if err != nil {
		return "", err
	}
	zap.L().Debug("imagestore: stored image", zap.String("key", key), zap.String("file", name))
	return s.ref(name), nil
}

// DeleteByUsername removes every stored image for a contact.
func (s *Store) DeleteByUsername(username string) error {
	if username == "" {
		return nil
	}
	for _, kind := range []string{KindProfile, KindBanner} {
		matches, err := filepath.Glob(filepath.Join(s.dir, globEscape(Key(username, kind))+".*"))
		if err != nil {
			return eris.Wrap(err, "imagestore: glob")
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
				return eris.Wrapf(err, "imagestore: remove %s", filepath.Base(m))
			}
		}
	}
	return nil
}

func (s *Store) ref(name string) string {
	return s.urlPrefix + "/" + name
}

func (s *Store) existing(key string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(s.dir, globEscape(key)+".*"))
	if err != nil {
		return "", false
	}
	for _, m := range matches {
		if strings.HasSuffix(m, ".tmp") {
			continue
		}
		return filepath.Base(m), true
	}
	return "", false
}

func (s *Store) download(ctx context.Context, url, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrap(err, "imagestore: create request")
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "imagestore: fetch")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("imagestore: unexpected status %d for %s", resp.StatusCode, key)
	}

	name := key + extension(resp.Header.Get("Content-Type"))
	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return "", eris.Wrap(err, "imagestore: create temp file")
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", eris.Wrap(err, "imagestore: write image")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", eris.Wrap(err, "imagestore: close image")
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return "", eris.Wrap(err, "imagestore: rename image")
	}
	return name, nil
}

// extension picks a file extension for a Content-Type header value.
func extension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return defaultExt
	}
	if ext, ok := preferredExt[mediaType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return defaultExt
	}
	return exts[0]
}

func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`)
	return r.Replace(s)
}
