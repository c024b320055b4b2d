// Package blobstore contains the filesystem implementation of the blob
// storage port. Blobs are opaque to the pipeline and addressed only by key.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
)

// FileStore implements secondary.BlobStore on the local filesystem. Keys are
// generated names under a single recordings directory; the original filename
// only contributes its extension so provider uploads keep a usable suffix.
type FileStore struct {
	dir      string
	maxBytes int64
}

// NewFileStore creates the store, ensuring the recordings directory exists.
// maxBytes caps a single blob; zero means unlimited.
func NewFileStore(baseDir string, maxBytes int64) (*FileStore, error) {
	dir := filepath.Join(baseDir, "recordings")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recordings dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

// SaveBlob streams r to disk under a generated key. Oversized uploads are
// rejected with a validation error and the partial file is removed.
func (s *FileStore) SaveBlob(ctx context.Context, r io.Reader, filename string) (string, int64, error) {
	key := uuid.NewString() + safeExt(filename)
	path := filepath.Join(s.dir, key)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create blob %s: %w", key, err)
	}

	limit := s.maxBytes
	var src io.Reader = r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	size, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write blob %s: %w", key, err)
	}
	if limit > 0 && size > limit {
		os.Remove(path)
		return "", 0, &pipeline.ValidationError{
			Reason: fmt.Sprintf("audio file exceeds the %d byte upload limit", limit),
		}
	}

	return key, size, nil
}

// OpenBlob opens the blob for streaming reads.
func (s *FileStore) OpenBlob(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, key))
	if os.IsNotExist(err) {
		return nil, &pipeline.NotFoundError{Entity: "blob", ID: key}
	}
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", key, err)
	}
	return f, nil
}

// DeleteBlob removes the blob. Deleting a missing blob is not an error.
func (s *FileStore) DeleteBlob(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// safeExt returns a sanitized lowercase extension from filename, or empty.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
