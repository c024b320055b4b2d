package secondary

import (
	"context"
	"io"
)

// BlobStore defines the secondary port for opaque audio blob storage. The
// pipeline only streams blobs by key; lifecycle beyond delete-on-replace is
// the store's concern.
type BlobStore interface {
	// SaveBlob streams r into storage and returns the generated key and the
	// number of bytes written.
	SaveBlob(ctx context.Context, r io.Reader, filename string) (key string, size int64, err error)

	// OpenBlob opens the blob for streaming reads.
	OpenBlob(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteBlob removes the blob. Deleting a missing blob is not an error.
	DeleteBlob(ctx context.Context, key string) error
}
