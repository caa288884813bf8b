// Package blobstore stores evidence files under a bucket directory and
// resolves public URLs for them. The HTTP server serves the bucket root read-only.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrExists      = errors.New("object already exists")
	ErrInvalidPath = errors.New("invalid object path")
)

// FileStore is a filesystem-backed bucket.
type FileStore struct {
	Root    string // directory holding all buckets
	Bucket  string
	BaseURL string // public origin, e.g. https://reports.example.org
}

func NewFileStore(root, bucket, baseURL string) *FileStore {
	return &FileStore{Root: root, Bucket: bucket, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Upload writes body to objectPath inside the bucket. Existing objects are never overwritten.
func (s *FileStore) Upload(ctx context.Context, objectPath string, body io.Reader) error {
	clean, err := cleanObjectPath(objectPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(s.Root, s.Bucket, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s: %w", clean, ErrExists)
	}
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("write object %s: %w", clean, err)
	}
	return f.Close()
}

// PublicURL returns the URL the object is served under. It does not check existence.
func (s *FileStore) PublicURL(objectPath string) string {
	segments := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.BaseURL + "/files/" + url.PathEscape(s.Bucket) + "/" + strings.Join(segments, "/")
}

// Dir is the directory to serve the bucket from.
func (s *FileStore) Dir() string {
	return filepath.Join(s.Root, s.Bucket)
}

func cleanObjectPath(p string) (string, error) {
	if p == "" || strings.Contains(p, "\\") {
		return "", fmt.Errorf("%q: %w", p, ErrInvalidPath)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%q: %w", p, ErrInvalidPath)
		}
	}
	return path.Clean(p), nil
}
